// Package tts is the text-to-speech collaborator (§6): "tts(text) →
// audio_bytes_or_null. Used only by alert publication." Alert
// publication itself is out of scope (§6), so this package only
// carries the contract and a no-op implementation to satisfy it.
package tts

import "context"

// Synthesizer is the behavioural contract alert publication would
// depend on, were it in scope.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, bool)
}

// NoopSynthesizer always returns no audio.
type NoopSynthesizer struct{}

func (NoopSynthesizer) Synthesize(context.Context, string) ([]byte, bool) { return nil, false }
