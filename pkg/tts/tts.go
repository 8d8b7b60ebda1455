package tts

import "context"

// Synthesizer turns a narration script into raw audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, script string) ([]byte, error)
}
