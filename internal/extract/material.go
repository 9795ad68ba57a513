package extract

import "github.com/wasteworks/chargemap/internal/model"

// DefaultMaterialRules returns the built-in material/waste-stream alias
// table. Specific streams precede the generic Recycling catch-all.
func DefaultMaterialRules() []model.AliasRule {
	return []model.AliasRule{
		{
			Label:    "OCC",
			Patterns: []string{`\bOCC\b`, `\bCARDBOARD\b`, `\bCORRUGATED\b`},
		},
		{
			Label:    "Paper",
			Patterns: []string{`\bPAPER\b`},
		},
		{
			Label:    "Plastic",
			Patterns: []string{`\bPLASTICS?\b`, `\bHDPE\b`, `\bPET\b`},
		},
		{
			Label:    "Metal",
			Patterns: []string{`\bSCRAP\s*METAL\b`, `\bMETAL\b`, `\bALUMINUM\b`},
		},
		{
			Label:    "Glass",
			Patterns: []string{`\bGLASS\b`},
		},
		{
			Label:    "Wood",
			Patterns: []string{`\bWOOD\b`, `\bPALLETS?\b`},
		},
		{
			Label:    "Organic",
			Patterns: []string{`\bORGANICS?\b`, `\bFOOD\s*WASTE\b`, `\bCOMPOST\b`},
		},
		{
			Label:    "E-Waste",
			Patterns: []string{`\bE-?WASTE\b`, `\bELECTRONICS?\b`},
		},
		{
			Label:    "C&D",
			Patterns: []string{`\bC&D\b`, `\bCONSTRUCTION\b`, `\bDEMO(?:LITION)?\b`},
		},
		{
			Label:    "Trash",
			Patterns: []string{`\bMSW\b`, `\bTRASH\b`, `\bGARBAGE\b`, `\bREFUSE\b`},
		},
		{
			Label:    "Recycling",
			Patterns: []string{`\bRECYCL(?:E|ING|ABLES?)?\b`},
		},
	}
}
