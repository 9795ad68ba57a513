package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteworks/chargemap/internal/model"
	"github.com/wasteworks/chargemap/internal/normalize"
)

func TestNew_RejectsBadTables(t *testing.T) {
	tests := []struct {
		name  string
		rules []model.AliasRule
	}{
		{
			name: "invalid regex",
			rules: []model.AliasRule{
				{Label: "Broken", Patterns: []string{`(\d+`}},
			},
		},
		{
			name: "duplicate label",
			rules: []model.AliasRule{
				{Label: "Compactor", Patterns: []string{`COMPACTOR`}},
				{Label: "Compactor", Patterns: []string{`COMP`}},
			},
		},
		{
			name: "missing label",
			rules: []model.AliasRule{
				{Patterns: []string{`COMPACTOR`}},
			},
		},
		{
			name: "missing patterns",
			rules: []model.AliasRule{
				{Label: "Compactor"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rules)
			assert.Error(t, err)
		})
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	// Deliberately overlapping pair: the split-body pattern must be tested
	// before the bare size pattern.
	ex, err := New([]model.AliasRule{
		{Label: "Split Body ${1}YD", Patterns: []string{`\bSPLIT[ -]?BODY\s*(\d+)\s*YA?R?D?\b`}},
		{Label: "${1}YD", Patterns: []string{`\b(\d+)\s*YA?R?D?\b`}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Split Body 28YD", ex.Extract("SPLIT BODY 28YD SERVICE"))
	assert.Equal(t, "28YD", ex.Extract("28YD SERVICE"))
}

func TestExtract_NoMatchReturnsSentinel(t *testing.T) {
	ex, err := New(DefaultEquipmentRules())
	require.NoError(t, err)

	assert.Equal(t, model.LabelUnclassified, ex.Extract("ADMINISTRATIVE FEE"))
	assert.Equal(t, model.LabelUnclassified, ex.Extract(""))
}

func TestExtract_Deterministic(t *testing.T) {
	ex, err := New(DefaultEquipmentRules())
	require.NoError(t, err)

	text := "30YD COMPACTOR TRASH DISPOSAL"
	first := ex.Extract(text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, ex.Extract(text))
	}
}

func TestDefaultEquipmentRules(t *testing.T) {
	ex, err := New(DefaultEquipmentRules())
	require.NoError(t, err)

	tests := []struct {
		text string
		want string
	}{
		{"42YD COMPACTOR MONTHLY FEE", "42YD Compactor"},
		{"30 YARD COMPACTOR TRASH DISPOSAL", "30YD Compactor"},
		{"20YD ROLL OFF HAUL", "20YD Roll Off"},
		{"8 YD FL SERVICE", "8YD Front Load"},
		{"6YD REAR LOAD PICKUP", "6YD Rear Load"},
		{"40YD OPEN TOP RENTAL", "40YD Open Top"},
		{"SPLIT BODY 28YD SERVICE", "Split Body 28YD"},
		{"28YD CONTAINER", "28YD"},
		{"10 CU YD DEBRIS BOX", "10YD"},
		{"COMPACTOR MAINTENANCE", "Compactor"},
		{"ROLL-OFF DELIVERY", "Roll Off"},
		{"96 GALLON TOTER SWAP", "96 Gallon"},
		{"TOTER EXCHANGE", "Toter"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(normalize.Normalize(tt.text)))
		})
	}
}

func TestDefaultMaterialRules(t *testing.T) {
	ex, err := New(DefaultMaterialRules())
	require.NoError(t, err)

	tests := []struct {
		text string
		want string
	}{
		{"30YD COMPACTOR OCC HAUL", "OCC"},
		{"CARDBOARD RECYCLING PICKUP", "OCC"}, // cardboard outranks generic recycling
		{"MIXED PAPER COLLECTION", "Paper"},
		{"SCRAP METAL LOAD", "Metal"},
		{"FOOD WASTE COMPOST SVC", "Organic"},
		{"E-WASTE DISPOSAL", "E-Waste"},
		{"CONSTRUCTION DEBRIS HAUL", "C&D"},
		{"MSW DISPOSAL", "Trash"},
		{"TRASH DISPOSAL", "Trash"},
		{"SINGLE STREAM RECYCLING", "Recycling"},
		{"42YD COMPACTOR MONTHLY FEE", model.LabelUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(normalize.Normalize(tt.text)))
		})
	}
}

func TestExtract_CoOccurrence(t *testing.T) {
	equipment, err := New(DefaultEquipmentRules())
	require.NoError(t, err)
	material, err := New(DefaultMaterialRules())
	require.NoError(t, err)

	// A single line yields both labels independently.
	text := normalize.Normalize("30YD COMPACTOR TRASH DISPOSAL")
	assert.Equal(t, "30YD Compactor", equipment.Extract(text))
	assert.Equal(t, "Trash", material.Extract(text))
}

func TestExtractWithFallback(t *testing.T) {
	ex, err := New(DefaultEquipmentRules())
	require.NoError(t, err)

	assert.Equal(t, "20YD Roll Off", ex.ExtractWithFallback("", "20YD ROLL OFF HAUL 10/15"))
	assert.Equal(t, "30YD Compactor", ex.ExtractWithFallback("30YD COMPACTOR", "20YD ROLL OFF"))
	assert.Equal(t, model.LabelUnclassified, ex.ExtractWithFallback("FEE", "ADJUSTMENT"))
}
