package repositories

import (
	"context"

	"github.com/satriahrh/lintas/domain/entities"
)

// TranslationRepository stores served translations
type TranslationRepository interface {
	Create(ctx context.Context, record *entities.TranslationRecord) error
	ListRecent(ctx context.Context, limit int) ([]*entities.TranslationRecord, error)
}

// AudioArchive keeps a copy of synthesized audio
type AudioArchive interface {
	// Save stores data under key and returns where it was put
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
