package model

// AccountService is one entry of the account service map: a physical piece
// of equipment under service contract, keyed by (account, equipment,
// material). Sourced read-only from billing records.
type AccountService struct {
	AccountID string
	Equipment string
	Material  string
	ServiceID string
	ID        int64
}

// ResolutionStatus is the outcome of resolving a classified line to a
// downstream service identifier.
type ResolutionStatus string

// Resolution status constants.
const (
	ResolutionResolved  ResolutionStatus = "RESOLVED"
	ResolutionAmbiguous ResolutionStatus = "AMBIGUOUS"
	ResolutionNotFound  ResolutionStatus = "NOT_FOUND"
)

// Resolution is the result of a service-map lookup. Ambiguous and not-found
// outcomes are data-quality signals that flow through the output stream;
// they are never resolved by an arbitrary tie-break.
type Resolution struct {
	Status    ResolutionStatus
	ServiceID string
	// Candidates holds the colliding service ids for AMBIGUOUS outcomes so
	// reviewers can see what the line could have resolved to.
	Candidates []string
}
