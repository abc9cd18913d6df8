// Package factcheck is the fact-check lookup collaborator (§6):
// "lookup(claim_text) → list of {claimant, rating, url, reviewer}.
// Empty list on failure."
package factcheck

import "context"

// Rating is one fact-check verdict against a claim.
type Rating struct {
	Claimant string `json:"claimant"`
	Rating   string `json:"rating"`
	URL      string `json:"url"`
	Reviewer string `json:"reviewer"`
}

// Lookup is the behavioural contract knowledge sources depend on.
type Lookup interface {
	Lookup(ctx context.Context, claimText string) []Rating
}
