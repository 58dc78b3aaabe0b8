package api

import "github.com/satriahrh/lintas/domain/entities"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// TranslationListResponse is returned by GET /api/v1/translations
type TranslationListResponse struct {
	Translations []*entities.TranslationRecord `json:"translations"`
	Count        int                           `json:"count"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)
