package extract

import "github.com/wasteworks/chargemap/internal/model"

// DefaultEquipmentRules returns the built-in equipment alias table.
// Order matters: sized multi-word patterns come before bare size
// catch-alls, which come before unsized equipment terms.
func DefaultEquipmentRules() []model.AliasRule {
	return []model.AliasRule{
		{
			Label:    "Split Body ${1}YD",
			Patterns: []string{`\bSPLIT[ -]?BODY\s*(\d+)\s*YA?R?D?\b`},
		},
		{
			Label:    "${1}YD Compactor",
			Patterns: []string{`\b(\d+)\s*YA?R?D?\s*(?:COMPACTOR|COMP)\b`},
		},
		{
			Label:    "${1}YD Roll Off",
			Patterns: []string{`\b(\d+)\s*YA?R?D?\s*(?:ROLL[ -]?OFF|RO)\b`},
		},
		{
			Label:    "${1}YD Front Load",
			Patterns: []string{`\b(\d+)\s*YA?R?D?\s*(?:FRONT[ -]?LOAD|FL)\b`},
		},
		{
			Label:    "${1}YD Rear Load",
			Patterns: []string{`\b(\d+)\s*YA?R?D?\s*(?:REAR[ -]?LOAD|RL)\b`},
		},
		{
			Label:    "${1}YD Open Top",
			Patterns: []string{`\b(\d+)\s*YA?R?D?\s*(?:OPEN[ -]?TOP|OT)\b`},
		},
		{
			Label: "${1}YD",
			Patterns: []string{
				`\b(\d+)\s*YA?R?D?\b`,
				`\b(\d+)\s*CU(?:BIC)?\s*YD\b`,
				`\b(\d+)\s*CY\b`,
			},
		},
		{
			Label:    "Compactor",
			Patterns: []string{`\bCOMPACTOR\b`},
		},
		{
			Label:    "Roll Off",
			Patterns: []string{`\bROLL[ -]?OFF\b`},
		},
		{
			Label:    "Front Load",
			Patterns: []string{`\bFRONT[ -]?LOAD\b`},
		},
		{
			Label:    "Rear Load",
			Patterns: []string{`\bREAR[ -]?LOAD\b`},
		},
		{
			Label:    "Open Top",
			Patterns: []string{`\bOPEN[ -]?TOP\b`},
		},
		{
			Label:    "${1} Gallon",
			Patterns: []string{`\b(\d+)\s*GAL(?:LON)?\b`},
		},
		{
			Label:    "Toter",
			Patterns: []string{`\bTOTER\b`},
		},
	}
}
