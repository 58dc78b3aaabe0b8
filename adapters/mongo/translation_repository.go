package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/entities"
	"github.com/satriahrh/lintas/domain/repositories"
)

// TranslationRepository implements repositories.TranslationRepository using MongoDB
type TranslationRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.TranslationRepository = (*TranslationRepository)(nil)

// NewTranslationRepository creates a new MongoDB translation repository
func NewTranslationRepository(db *mongo.Database, logger *zap.Logger) *TranslationRepository {
	collection := db.Collection("translations")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		})
		if err != nil {
			logger.Error("Failed to create translation indexes", zap.Error(err))
		} else {
			logger.Info("Translation indexes created successfully")
		}
	}()

	return &TranslationRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create stores a record, assigning an ID and timestamp when missing
func (r *TranslationRepository) Create(ctx context.Context, record *entities.TranslationRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to create translation record: %w", err)
	}

	return nil
}

// ListRecent returns the newest records first
func (r *TranslationRepository) ListRecent(ctx context.Context, limit int) ([]*entities.TranslationRecord, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find translation records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*entities.TranslationRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode translation records: %w", err)
	}

	return records, nil
}
