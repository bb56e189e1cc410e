package rules

import "fmt"

// Settings parameterizes the default build order.
type Settings struct {
	Home        string // main structure name
	Defense     string // defensive structure name
	MaxDefenses int
}

// BuildOrder returns the standard opening and expansion rules, highest
// priority first.
func BuildOrder(s Settings) []*Rule {
	return []*Rule{
		{
			Name:         "metal-drills",
			Priority:     1000,
			ConditionSrc: `Extractors("metal") < 3 && UnclaimedDeposits("metal") > 0`,
			Action:       PlaceExtractor("metal"),
		},
		{
			Name:     "concrete-plant",
			Priority: 990,
			ConditionSrc: `Extractors("metal") >= 3 && Lacks("bot assembler", 1)` +
				` && Lacks("concrete plant", 1)`,
			Action: PlaceNear("concrete plant", "metal", 0),
		},
		{
			Name:     "second-concrete-plant",
			Priority: 980,
			ConditionSrc: `HasConstructionOrBuilt("concrete plant", 1) && Lacks("bot assembler", 1)` +
				` && Lacks("concrete plant", 2)`,
			Action: PlaceNear("concrete plant", "concrete plant", 0),
		},
		{
			Name:     "crystals-drill",
			Priority: 970,
			ConditionSrc: `Extractors("metal") >= 3 && Extractors("crystals") < 1` +
				` && UnclaimedDeposits("crystals") > 0`,
			Action: PlaceExtractor("crystals"),
		},
		{
			Name:     "oil-pump",
			Priority: 960,
			ConditionSrc: `Extractors("metal") >= 3 && Extractors("oil") < 1` +
				` && UnclaimedDeposits("oil") > 0`,
			Action: PlaceExtractor("oil"),
		},
		{
			Name:         "laboratory",
			Priority:     950,
			ConditionSrc: `Extractors("crystals") >= 1 && Lacks("laboratory", 1)`,
			Action:       PlaceNear("laboratory", "crystals", 0),
		},
		{
			Name:         "arsenal",
			Priority:     940,
			ConditionSrc: `HasConstructionOrBuilt("laboratory", 1) && Lacks("arsenal", 1)`,
			Action:       PlaceNear("arsenal", "metal", 1),
		},
		{
			Name:         "bot-assembler",
			Priority:     930,
			ConditionSrc: `Built("laboratory") >= 1 && Lacks("bot assembler", 1)`,
			Action:       PlaceNear("bot assembler", "laboratory", 0),
		},
		{
			Name:         "demolish-concrete-plant",
			Priority:     920,
			ConditionSrc: `Built("bot assembler") >= 1 && Built("concrete plant") >= 2`,
			Action:       Demolish("concrete plant"),
		},
		{
			Name:         "second-bot-assembler",
			Priority:     910,
			ConditionSrc: fmt.Sprintf(`Total(%q) >= 4 && Lacks("bot assembler", 2)`, s.Defense),
			Action:       PlaceNear("bot assembler", s.Home, 0),
		},
		{
			Name:     "defense-perimeter",
			Priority: 900,
			ConditionSrc: fmt.Sprintf(`HasMain() && Built("bot assembler") >= 1 && Total(%q) < %d`,
				s.Defense, s.MaxDefenses),
			Action: PlaceFrontier(s.Defense),
		},
	}
}
