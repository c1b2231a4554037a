package query

// DefaultConfig is the starter filter: studies of immersive VR run remotely
// that measure behaviour. Three groups joined by AND, case-insensitive, all
// fields searched.
func DefaultConfig() *Config {
	vr := NewBlock("Group 1", "immersive virtual reality", "virtual reality")

	remote := NewBlock("Group 2",
		"remote*", "online", "crowdsourc*", "web-based", "at-home", "in the wild",
		"unsupervised", "(mechanical turk|mturk|prolific)",
	)
	remote.IsRegex = true

	behaviour := NewBlock("Group 3",
		"behavio*", "task performance", "participant*", "questionnaire*",
		"experiment*", "(presence|embodiment)", "user experience",
	)
	behaviour.IsRegex = true

	return &Config{
		Blocks:          []Block{vr, remote, behaviour},
		Operators:       []Operator{And, And},
		CaseInsensitive: true,
		SearchFields:    AllSelected(),
	}
}
