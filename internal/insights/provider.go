package insights

import "context"

// Provider sends a prompt to a language model and returns the raw text
// response. Used only by the Generator; the rest of the system never
// talks to a model directly.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// systemPrompt frames every completion request.
const systemPrompt = "You are an expert analyst of the music industry labor market with 20 years of experience."
