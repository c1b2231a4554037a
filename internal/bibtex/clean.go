package bibtex

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// combining maps LaTeX accent commands to Unicode combining marks.
var combining = map[string]string{
	`"`: "\u0308",
	`'`: "\u0301",
	"`": "\u0300",
	"^": "\u0302",
	"~": "\u0303",
	"=": "\u0304",
	".": "\u0307",
	"u": "\u0306",
	"v": "\u030C",
	"H": "\u030B",
	"c": "\u0327",
	"k": "\u0328",
}

var (
	// \"o, \"{o}, {\"o}
	symbolAccentRe = regexp.MustCompile("\\\\([\"'`^~=.])\\s*\\{?([A-Za-z])\\}?")
	// \c{c}, \v{s}, \u{a}
	letterAccentRe = regexp.MustCompile(`\\([uvHck])\{([A-Za-z])\}`)
	escapedRe      = regexp.MustCompile(`\\([&%$#_])`)
	commandRe      = regexp.MustCompile(`\\[A-Za-z]+\s*`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// Clean turns a raw field value into display text: LaTeX accents become
// composed Unicode characters, escaped specials lose their backslash, other
// commands and grouping braces are dropped and whitespace is collapsed.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = symbolAccentRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := symbolAccentRe.FindStringSubmatch(m)
		return sub[2] + combining[sub[1]]
	})
	s = letterAccentRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := letterAccentRe.FindStringSubmatch(m)
		return sub[2] + combining[sub[1]]
	})
	s = escapedRe.ReplaceAllString(s, "$1")
	s = commandRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "", "~", " ", "---", "—", "--", "–").Replace(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return norm.NFC.String(strings.TrimSpace(s))
}

// CleanTitle is the display form of the title.
func (r Record) CleanTitle() string { return Clean(r.Title()) }

// Authors returns the author list with "and" separators replaced by "; ".
func (r Record) Authors() string {
	raw := r.first("author", "authors", "editor")
	if raw == "" {
		return ""
	}
	parts := andRe.Split(spaceRe.ReplaceAllString(raw, " "), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := Clean(p); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, "; ")
}

var (
	yearRe = regexp.MustCompile(`\d{4}`)
	andRe  = regexp.MustCompile(`\s+and\s+`)
)

// Year returns the publication year from "year", or the first four-digit
// run of "date" (biblatex).
func (r Record) Year() string {
	if y := strings.TrimSpace(Clean(r.Get("year"))); y != "" {
		return y
	}
	return yearRe.FindString(r.Get("date"))
}

// Venue returns the journal, proceedings title or publisher.
func (r Record) Venue() string {
	return Clean(r.first("journal", "journaltitle", "booktitle", "publisher", "howpublished", "school", "institution"))
}

// Link resolves a URL for the record: the url field when present, else the
// DOI as a doi.org link.
func (r Record) Link() string {
	if u := strings.TrimSpace(r.Get("url")); u != "" {
		return u
	}
	doi := strings.TrimSpace(r.Get("doi"))
	if doi == "" {
		return ""
	}
	if strings.HasPrefix(doi, "http://") || strings.HasPrefix(doi, "https://") {
		return doi
	}
	doi = strings.TrimPrefix(strings.TrimPrefix(doi, "doi:"), "DOI:")
	return "https://doi.org/" + strings.TrimSpace(doi)
}
