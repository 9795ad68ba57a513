package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wasteworks/chargemap/internal/extract"
	"github.com/wasteworks/chargemap/internal/model"
)

// RuleSet is a fully validated run-scoped rule configuration: both alias
// tables plus the charge rule table. Loaded once at pipeline start and
// shared read-only across all line items.
type RuleSet struct {
	Equipment []model.AliasRule
	Materials []model.AliasRule
	Charges   []model.ChargeRule
}

// ruleFile is the YAML shape of an externally curated rule file.
type ruleFile struct {
	Equipment []model.AliasRule `yaml:"equipment"`
	Materials []model.AliasRule `yaml:"materials"`
	Charges   []chargeRuleYAML  `yaml:"charge_rules"`
}

// chargeRuleYAML maps the curated table row. The wildcard vendor is spelled
// "*" in the file and converted to the tagged VendorScope variant at this
// boundary only.
type chargeRuleYAML struct {
	Vendor      string `yaml:"vendor"`
	Pattern     string `yaml:"pattern"`
	ChargeType  string `yaml:"charge_type"`
	ServiceType string `yaml:"service_type"`
	Priority    int    `yaml:"priority"`
	SampleCount int    `yaml:"sample_count"`
}

// Load reads and validates a YAML rule file. Any malformed entry (bad
// regex, duplicate alias label, missing charge type) fails the whole load:
// skipping bad rules silently would make table maintenance errors
// invisible.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML rule-file content.
func Parse(data []byte) (*RuleSet, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}

	rs := &RuleSet{
		Equipment: file.Equipment,
		Materials: file.Materials,
		Charges:   make([]model.ChargeRule, 0, len(file.Charges)),
	}

	for i, row := range file.Charges {
		rule, err := row.toRule()
		if err != nil {
			return nil, fmt.Errorf("charge rule %d: %w", i, err)
		}
		rs.Charges = append(rs.Charges, rule)
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (r chargeRuleYAML) toRule() (model.ChargeRule, error) {
	if r.Vendor == "" {
		return model.ChargeRule{}, fmt.Errorf("vendor is required (use %q for any vendor)", "*")
	}
	if r.ChargeType == "" {
		return model.ChargeRule{}, fmt.Errorf("charge_type is required")
	}
	if r.Priority < 0 {
		return model.ChargeRule{}, fmt.Errorf("priority must be non-negative, got %d", r.Priority)
	}

	scope := model.VendorOnly(r.Vendor)
	if r.Vendor == "*" {
		scope = model.AnyVendor()
	}

	// An omitted priority lands in the tier implied by the scope.
	priority := r.Priority
	if priority == 0 {
		if scope.IsWildcard() {
			priority = model.PriorityDefault
		} else {
			priority = model.PriorityVendor
		}
	}

	return model.ChargeRule{
		Scope:       scope,
		Pattern:     r.Pattern,
		ChargeType:  r.ChargeType,
		ServiceType: r.ServiceType,
		Priority:    priority,
		SampleCount: r.SampleCount,
	}, nil
}

// Validate compiles every table in the set. Structural failure here aborts
// the run before any classification begins.
func (rs *RuleSet) Validate() error {
	if _, err := extract.New(rs.Equipment); err != nil {
		return fmt.Errorf("equipment aliases: %w", err)
	}
	if _, err := extract.New(rs.Materials); err != nil {
		return fmt.Errorf("material aliases: %w", err)
	}
	if _, err := NewTable(rs.Charges); err != nil {
		return fmt.Errorf("charge rules: %w", err)
	}
	return nil
}
