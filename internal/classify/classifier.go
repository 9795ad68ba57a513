// Package classify implements the per-line classification pipeline and the
// parallel batch engine that drives it. A Classifier is a pure function of
// its input line plus the immutable rule snapshots it was built with, so
// batches may run concurrently with no locking.
package classify

import (
	"fmt"
	"time"

	"github.com/wasteworks/chargemap/internal/extract"
	"github.com/wasteworks/chargemap/internal/model"
	"github.com/wasteworks/chargemap/internal/normalize"
	"github.com/wasteworks/chargemap/internal/resolve"
	"github.com/wasteworks/chargemap/internal/rules"
)

// Classifier runs one line item through normalization, extraction, charge
// classification and service resolution. Immutable after construction.
type Classifier struct {
	equipment *extract.Extractor
	material  *extract.Extractor
	table     *rules.Table
	services  *resolve.ServiceMap
}

// New builds a classifier from a validated rule set and service map. All
// tables are compiled here, before any classification begins; a malformed
// table is a load-time failure, never a per-item one.
func New(rs *rules.RuleSet, services *resolve.ServiceMap) (*Classifier, error) {
	equipment, err := extract.New(rs.Equipment)
	if err != nil {
		return nil, fmt.Errorf("equipment aliases: %w", err)
	}
	material, err := extract.New(rs.Materials)
	if err != nil {
		return nil, fmt.Errorf("material aliases: %w", err)
	}
	table, err := rules.NewTable(rs.Charges)
	if err != nil {
		return nil, fmt.Errorf("charge rules: %w", err)
	}
	if services == nil {
		services, err = resolve.NewServiceMap(nil)
		if err != nil {
			return nil, err
		}
	}

	return &Classifier{
		equipment: equipment,
		material:  material,
		table:     table,
		services:  services,
	}, nil
}

// Classify transforms a LineItem into a ClassifiedLineItem. It is total:
// uncovered patterns, missing extractions and unresolvable services all
// come back as distinguished outcome values, never as errors.
func (c *Classifier) Classify(item model.LineItem) model.ClassifiedLineItem {
	text := normalize.Normalize(item.Description)
	fullText := normalize.Normalize(item.FullText)
	if text == "" {
		text = fullText
	}

	out := model.ClassifiedLineItem{
		LineItem:     item,
		Equipment:    c.equipment.ExtractWithFallback(text, fullText),
		Material:     c.material.ExtractWithFallback(text, fullText),
		ChargeType:   model.ChargeTypeUnclassified,
		Tier:         model.TierUnclassified,
		ClassifiedAt: time.Now(),
	}

	if rule, tier, ok := c.table.Match(item.VendorName, text); ok {
		out.ChargeType = rule.ChargeType
		out.ServiceType = rule.ServiceType
		out.Tier = tier
		out.RuleID = rule.ID
	}

	out.Service = c.services.Resolve(item.AccountID, out.Equipment, out.Material)

	return out
}
