package wiring

import (
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/store"
)

var _ = ginkgo.Describe("Run", func() {
	ginkgo.It("classifies the fixture, writes exports, and records the run", func() {
		dir := ginkgo.GinkgoT().TempDir()
		st := store.NewMemStore()
		req := Request{
			Input:  filepath.Join("testdata", "refs.bib"),
			BibOut: filepath.Join(dir, "matched.bib"),
			CSVOut: filepath.Join(dir, "matched.csv"),
			Record: true,
		}

		out, err := Run(req, st)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(out.Result.MatchedKeys()).To(gomega.Equal([]string{"smith2021remote", "crowd2019"}))
		gomega.Expect(out.Result.Summary.Total).To(gomega.Equal(5))
		gomega.Expect(out.Result.Summary.Eligible).To(gomega.Equal(4))
		gomega.Expect(out.RunID).To(gomega.BeNumerically(">", 0))

		recs, err := bibtex.ParseFile(req.BibOut)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(recs).To(gomega.HaveLen(2))

		csv, err := os.ReadFile(req.CSVOut)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(string(csv)).To(gomega.ContainSubstring("https://doi.org/10.1162/pres_a_00001"))

		runs, err := st.ListRuns(0)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(runs).To(gomega.HaveLen(1))
		gomega.Expect(runs[0].MatchedKeys).To(gomega.Equal(out.Result.MatchedKeys()))
	})

	ginkgo.It("uses a saved configuration by name", func() {
		st := store.NewMemStore()
		cfg, _, err := ResolveConfig(ConfigSource{Expression: `"virtual reality" AND NOT (museum OR art)`}, Overrides{}, nil)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(st.SaveConfig("vr-no-art", cfg)).To(gomega.Succeed())

		out, err := Run(Request{
			Input:  filepath.Join("testdata", "refs.bib"),
			Config: ConfigSource{Saved: "vr-no-art"},
		}, st)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(out.ConfigName).To(gomega.Equal("vr-no-art"))
		gomega.Expect(out.Result.MatchedKeys()).To(gomega.ConsistOf("smith2021remote", "lee2020lab", "crowd2019"))
	})
})
