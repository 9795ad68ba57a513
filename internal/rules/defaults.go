package rules

import "github.com/wasteworks/chargemap/internal/model"

// DefaultChargeRules returns the built-in wildcard charge rule table. These
// are low-precedence fallbacks; vendor-specific rules added by curation
// occupy the high-precedence tier and always win over them.
func DefaultChargeRules() []model.ChargeRule {
	defaults := []struct {
		pattern     string
		chargeType  string
		serviceType string
	}{
		{`MONTHLY.*(?:FEE|SERVICE|SVC)`, "Monthly Service Commercial", "Recurring"},
		{`\b(?:EMPTY\s*&?\s*RETURN|E\s*&\s*R)\b`, "Empty & Return", "On Call"},
		{`\bHAUL(?:ING)?\b`, "Empty & Return", "On Call"},
		{`\bEXTRA\s*(?:PICKUP|PU)\b|\bON\s*CALL\b`, "Extra Pickup", "On Call"},
		{`\bFUEL\s*(?:SURCHARGE|FEE|CHARGE)\b|\bFSC\b`, "Fuel Surcharge", ""},
		{`\bENV(?:IRONMENTAL)?\s*(?:FEE|CHARGE|RECOVERY)\b`, "Environmental Fee", ""},
		{`\bFRANCHISE\s*FEE\b`, "Franchise Fee", ""},
		{`\bADMIN(?:ISTRATIVE)?\s*FEE\b`, "Administrative Fee", ""},
		{`\bLATE\s*FEE\b|\bFINANCE\s*CHARGE\b`, "Late Fee", ""},
		{`\bCONTAMINATION\b`, "Contamination Fee", ""},
		{`\bDRY\s*RUN\b|\bTRIP\s*CHARGE\b`, "Dry Run", "On Call"},
		{`\bRENTAL\b|\bRENT\b`, "Equipment Rental", "Recurring"},
		{`\bDELIVERY\b|\bDELIVER\b`, "Delivery", "On Call"},
		{`\bREMOVAL\b|\bREMOVE\b`, "Removal", "On Call"},
		{`\bEXCHANGE\b|\bSWAP\b`, "Exchange", "On Call"},
		{`\bOCC\b|\bCARDBOARD\b`, "Recycling Service", ""},
		{`\bRECYCL(?:E|ING|ABLES?)?\b`, "Recycling Service", ""},
		{`\bDISPOSAL\b|\bTONNAGE\b|\bTONS?\b`, "Disposal", ""},
		{`\bTAX(?:ES)?\b`, "Tax", ""},
		{`\bCREDIT\b|\bADJUSTMENT\b`, "Adjustment", ""},
	}

	rules := make([]model.ChargeRule, 0, len(defaults))
	for _, d := range defaults {
		rules = append(rules, model.ChargeRule{
			Scope:       model.AnyVendor(),
			Pattern:     d.pattern,
			ChargeType:  d.chargeType,
			ServiceType: d.serviceType,
			Priority:    model.PriorityDefault,
		})
	}
	return rules
}
