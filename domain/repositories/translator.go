package repositories

import "context"

// Translator abstracts any text translation provider
type Translator interface {
	// Translate converts text from sourceLang to targetLang.
	// An empty result with a nil error means the provider produced no output.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	// Name identifies the provider in logs and translation records
	Name() string
}
