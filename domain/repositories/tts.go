package repositories

import "context"

// TextToSpeech abstracts speech synthesis services.
// ConvertTextToSpeech returns once the provider has accepted the request;
// the channel yields audio chunks and is closed when synthesis ends.
type TextToSpeech interface {
	ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error)
	// ContentType is the media type of the produced audio
	ContentType() string
}
