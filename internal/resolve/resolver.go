// Package resolve maps classified line items to downstream service
// identifiers using the account service map: billing records keyed by
// (account, equipment, material). Lookups are pure and in-memory so the
// classification hot path never touches storage.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wasteworks/chargemap/internal/model"
)

type compositeKey struct {
	account   string
	equipment string
	material  string
}

func newKey(account, equipment, material string) compositeKey {
	return compositeKey{
		account:   strings.ToUpper(strings.TrimSpace(account)),
		equipment: strings.ToUpper(strings.TrimSpace(equipment)),
		material:  strings.ToUpper(strings.TrimSpace(material)),
	}
}

// ServiceMap is an immutable snapshot of the account service map. Safe for
// concurrent use once built.
type ServiceMap struct {
	exact       map[compositeKey]string
	byEquipment map[compositeKey][]string
}

// NewServiceMap builds a lookup structure from billing entries. The
// composite key must be unique per account; a duplicate is a structural
// data error and rejects the whole map at load time.
func NewServiceMap(entries []model.AccountService) (*ServiceMap, error) {
	m := &ServiceMap{
		exact:       make(map[compositeKey]string, len(entries)),
		byEquipment: make(map[compositeKey][]string),
	}

	for _, e := range entries {
		key := newKey(e.AccountID, e.Equipment, e.Material)
		if existing, dup := m.exact[key]; dup {
			return nil, fmt.Errorf("duplicate service map entry for account %s, equipment %s, material %s (service ids %s and %s)",
				e.AccountID, e.Equipment, e.Material, existing, e.ServiceID)
		}
		m.exact[key] = e.ServiceID

		eqKey := newKey(e.AccountID, e.Equipment, "")
		m.byEquipment[eqKey] = append(m.byEquipment[eqKey], e.ServiceID)
	}

	// Deterministic candidate ordering for ambiguous reports.
	for key := range m.byEquipment {
		sort.Strings(m.byEquipment[key])
	}

	return m, nil
}

// Len returns the number of service entries.
func (m *ServiceMap) Len() int {
	return len(m.exact)
}

// Resolve looks up the service for a classified line:
//
//   - exact (account, equipment, material) match wins;
//   - otherwise, a single (account, equipment) entry is sufficient when the
//     material was under-specified;
//   - multiple surviving candidates are AMBIGUOUS, surfaced with the
//     colliding service ids for manual review, never tie-broken;
//   - no candidates at all is NOT_FOUND.
func (m *ServiceMap) Resolve(accountID, equipment, material string) model.Resolution {
	if material != "" && material != model.LabelUnclassified {
		if id, ok := m.exact[newKey(accountID, equipment, material)]; ok {
			return model.Resolution{Status: model.ResolutionResolved, ServiceID: id}
		}
	}

	candidates := m.byEquipment[newKey(accountID, equipment, "")]
	switch len(candidates) {
	case 0:
		return model.Resolution{Status: model.ResolutionNotFound}
	case 1:
		return model.Resolution{Status: model.ResolutionResolved, ServiceID: candidates[0]}
	default:
		out := make([]string, len(candidates))
		copy(out, candidates)
		return model.Resolution{Status: model.ResolutionAmbiguous, Candidates: out}
	}
}
