package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrImageNotFound = errors.New("gallery image not found")

// Repository stores the marketing gallery. Display order is an explicit
// field so the admin can drag images around and have the order stick.
type Repository interface {
	List(ctx context.Context) ([]domain.GalleryImage, error)
	Create(ctx context.Context, image *domain.GalleryImage) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, orderedIDs []string) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("gallery_images")}
}

func (m *mongoRepository) List(ctx context.Context) ([]domain.GalleryImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery images: %w", err)
	}
	defer cursor.Close(ctx)

	var images []domain.GalleryImage
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("failed to decode gallery images: %w", err)
	}
	return images, nil
}

func (m *mongoRepository) Create(ctx context.Context, image *domain.GalleryImage) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}

	// New images go to the end of the strip.
	count, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count gallery images: %w", err)
	}
	image.Order = int(count)

	if _, err := m.collection.InsertOne(ctx, image); err != nil {
		return fmt.Errorf("failed to insert gallery image: %w", err)
	}
	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete gallery image: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrImageNotFound
	}
	return nil
}

// Reorder rewrites the order field of every listed image to its position in
// orderedIDs. IDs not in the list keep their old order value and sort after
// a full reorder in practice, since the admin UI always submits the full
// strip.
func (m *mongoRepository) Reorder(ctx context.Context, orderedIDs []string) error {
	models := make([]mongo.WriteModel, 0, len(orderedIDs))
	for position, id := range orderedIDs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"order": position}}))
	}
	if len(models) == 0 {
		return nil
	}

	result, err := m.collection.BulkWrite(ctx, models)
	if err != nil {
		return fmt.Errorf("failed to reorder gallery images: %w", err)
	}
	if result.MatchedCount != int64(len(orderedIDs)) {
		return ErrImageNotFound
	}
	return nil
}
