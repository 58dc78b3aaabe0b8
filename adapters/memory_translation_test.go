package adapters

import (
	"context"
	"fmt"
	"testing"

	"github.com/satriahrh/lintas/domain/entities"
)

func newRecord(i int) *entities.TranslationRecord {
	return &entities.TranslationRecord{
		Text:           fmt.Sprintf("text %d", i),
		TranslatedText: fmt.Sprintf("texte %d", i),
		SourceLang:     "en",
		TargetLang:     "fr",
	}
}

func TestMemoryTranslationRepository_CreateAndList(t *testing.T) {
	repo := NewMemoryTranslationRepository(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, newRecord(i)); err != nil {
			t.Fatalf("Failed to create record: %v", err)
		}
	}

	records, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Text != "text 2" || records[1].Text != "text 1" {
		t.Errorf("Expected newest first, got %q, %q", records[0].Text, records[1].Text)
	}

	if records[0].ID == "" || records[0].CreatedAt.IsZero() {
		t.Error("Expected ID and CreatedAt to be assigned")
	}
}

func TestMemoryTranslationRepository_Evicts(t *testing.T) {
	repo := NewMemoryTranslationRepository(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		repo.Create(ctx, newRecord(i))
	}

	records, _ := repo.ListRecent(ctx, 10)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records after eviction, got %d", len(records))
	}
	if records[1].Text != "text 3" {
		t.Errorf("Expected oldest kept record 'text 3', got %q", records[1].Text)
	}
}

func TestMemoryTranslationRepository_Validation(t *testing.T) {
	repo := NewMemoryTranslationRepository(2)

	if err := repo.Create(context.Background(), &entities.TranslationRecord{}); err == nil {
		t.Error("Expected validation error")
	}

	if _, err := repo.ListRecent(context.Background(), -1); err == nil {
		t.Error("Expected error for negative limit")
	}
}
