package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteworks/chargemap/internal/model"
)

const sampleRuleFile = `
equipment:
  - label: "${1}YD Compactor"
    patterns:
      - '\b(\d+)\s*YA?R?D?\s*COMPACTOR\b'
  - label: "${1}YD"
    patterns:
      - '\b(\d+)\s*YA?R?D?\b'

materials:
  - label: OCC
    patterns: ['\bOCC\b', '\bCARDBOARD\b']
  - label: Trash
    patterns: ['\bTRASH\b']

charge_rules:
  - vendor: "Lawrence Waste"
    pattern: '\bHAUL\b'
    charge_type: "Empty & Return"
    service_type: "On Call"
    sample_count: 17
  - vendor: "*"
    pattern: 'MONTHLY.*FEE'
    charge_type: "Monthly Service Commercial"
    service_type: "Recurring"
`

func TestParse(t *testing.T) {
	rs, err := Parse([]byte(sampleRuleFile))
	require.NoError(t, err)

	assert.Len(t, rs.Equipment, 2)
	assert.Len(t, rs.Materials, 2)
	require.Len(t, rs.Charges, 2)

	vendor := rs.Charges[0]
	assert.False(t, vendor.Scope.IsWildcard())
	assert.Equal(t, "Lawrence Waste", vendor.Scope.Vendor())
	assert.Equal(t, model.PriorityVendor, vendor.Priority, "omitted priority defaults to the vendor tier")
	assert.Equal(t, 17, vendor.SampleCount)

	wildcard := rs.Charges[1]
	assert.True(t, wildcard.Scope.IsWildcard())
	assert.Equal(t, model.PriorityDefault, wildcard.Priority, "omitted priority defaults to the wildcard tier")
}

func TestParse_RejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad charge pattern regex",
			yaml: `
charge_rules:
  - vendor: "*"
    pattern: '(HAUL'
    charge_type: "Empty & Return"
`,
		},
		{
			name: "bad alias pattern regex",
			yaml: `
equipment:
  - label: Compactor
    patterns: ['(\d+']
`,
		},
		{
			name: "duplicate alias label",
			yaml: `
materials:
  - label: OCC
    patterns: ['\bOCC\b']
  - label: OCC
    patterns: ['\bCARDBOARD\b']
`,
		},
		{
			name: "missing vendor",
			yaml: `
charge_rules:
  - pattern: '\bHAUL\b'
    charge_type: "Empty & Return"
`,
		},
		{
			name: "missing charge type",
			yaml: `
charge_rules:
  - vendor: "*"
    pattern: '\bHAUL\b'
`,
		},
		{
			name: "not yaml",
			yaml: `{{{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRuleFile), 0o600))

	rs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, rs.Charges, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
