package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines promo code persistence as its consumers need it.
type Repository interface {
	Create(ctx context.Context, code *domain.PromoCode) error
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	List(ctx context.Context) ([]domain.PromoCode, error)
	Update(ctx context.Context, id string, code *domain.PromoCode) error
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, code string) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("promo_codes")}
}

// EnsureIndexes sets up the unique code index. Run once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	repo := &mongoRepository{collection: db.Collection("promo_codes")}
	return repo.CreateIndexes(ctx)
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create promo code index: %w", err)
	}
	return nil
}

func (m *mongoRepository) Create(ctx context.Context, code *domain.PromoCode) error {
	code.Code = strings.ToUpper(code.Code)
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	existing := m.collection.FindOne(ctx, bson.M{"code": code.Code})
	if existing.Err() == nil {
		return ErrDuplicateCode
	}
	if !errors.Is(existing.Err(), mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check existing promo code: %w", existing.Err())
	}

	if _, err := m.collection.InsertOne(ctx, code); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert promo code: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	var promo domain.PromoCode

	filter := bson.M{"code": strings.ToUpper(code)}
	err := m.collection.FindOne(ctx, filter).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &promo, nil
}

func (m *mongoRepository) List(ctx context.Context) ([]domain.PromoCode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer cursor.Close(ctx)

	var codes []domain.PromoCode
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, fmt.Errorf("failed to decode promo codes: %w", err)
	}
	return codes, nil
}

func (m *mongoRepository) Update(ctx context.Context, id string, code *domain.PromoCode) error {
	update := bson.M{"$set": bson.M{
		"code":           strings.ToUpper(code.Code),
		"discount_type":  code.DiscountType,
		"discount_value": code.DiscountValue,
		"description":    code.Description,
		"expiry_date":    code.ExpiryDate,
		"usage_limit":    code.UsageLimit,
		"is_active":      code.IsActive,
	}}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrPromoNotFound
	}
	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrPromoNotFound
	}
	return nil
}

func (m *mongoRepository) IncrementUsage(ctx context.Context, code string) error {
	filter := bson.M{"code": strings.ToUpper(code)}
	update := bson.M{"$inc": bson.M{"used_count": 1}}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrPromoNotFound
	}
	return nil
}
