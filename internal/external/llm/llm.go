// Package llm is the AI text completion collaborator (§6): "complete
// (prompt, purpose) → structured_json_or_text. May fail; on failure,
// the caller substitutes a documented fallback." Knowledge sources
// depend only on the Completer interface; which provider backs it is
// a wiring-time decision.
package llm

import "context"

// Completer is the behavioural contract consumed by knowledge
// sources such as network and case_synthesizer. purpose is a short
// opaque tag ("extract_claims", "summarize_case", ...) providers may
// use for logging or model selection; it carries no semantics the
// core depends on.
type Completer interface {
	Complete(ctx context.Context, prompt, purpose string) (string, error)
}

// NoneCompleter always fails, matching the spec's "None" provider and
// the donor's disabled-phase behaviour: callers are required to
// tolerate this via their documented fallback.
type NoneCompleter struct{}

func (NoneCompleter) Complete(ctx context.Context, prompt, purpose string) (string, error) {
	return "", errDisabled
}

var errDisabled = completionError("llm completion disabled: no provider configured")

type completionError string

func (e completionError) Error() string { return string(e) }
