package record

import (
	"context"
	"errors"
	"time"

	"go-cmms/internal/common/models"
	"go-cmms/internal/database"
	"go-cmms/pkg/permissions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrRecordNotFound = errors.New("record not found")

// systemFields are queried and sorted as stored; anything else lives under data.
var systemFields = map[string]bool{
	"_id":        true,
	"created_at": true,
	"updated_at": true,
	"created_by": true,
	"updated_by": true,
}

type RecordRepository interface {
	Create(ctx context.Context, record *models.Record) error
	Get(ctx context.Context, module permissions.Module, id string) (*models.Record, error)
	List(ctx context.Context, module permissions.Module, filter map[string]any, limit, offset int64, sortBy string, sortOrder int) ([]models.Record, error)
	Count(ctx context.Context, module permissions.Module, filter map[string]any) (int64, error)
	Update(ctx context.Context, module permissions.Module, id string, data map[string]any, userID string) error
	Delete(ctx context.Context, module permissions.Module, id string, userID string) error
	EnsureIndexes(ctx context.Context) error
}

type RecordRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRecordRepository(mongodb *database.MongodbDB) RecordRepository {
	return &RecordRepositoryImpl{
		Collection: mongodb.DB.Collection("records"),
	}
}

func recordID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrRecordNotFound
	}
	return oid, nil
}

func buildQuery(module permissions.Module, filter map[string]any) bson.M {
	query := bson.M{
		"module":  module,
		"deleted": bson.M{"$ne": true},
	}
	for k, v := range filter {
		if systemFields[k] {
			query[k] = v
		} else {
			query["data."+k] = v
		}
	}
	return query
}

func (r *RecordRepositoryImpl) Create(ctx context.Context, record *models.Record) error {
	_, err := r.Collection.InsertOne(ctx, record)
	return err
}

func (r *RecordRepositoryImpl) Get(ctx context.Context, module permissions.Module, id string) (*models.Record, error) {
	oid, err := recordID(id)
	if err != nil {
		return nil, err
	}

	var record models.Record
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid, "module": module, "deleted": bson.M{"$ne": true}}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepositoryImpl) List(ctx context.Context, module permissions.Module, filter map[string]any, limit, offset int64, sortBy string, sortOrder int) ([]models.Record, error) {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if sortOrder == 0 {
		sortOrder = -1
	}
	sortKey := sortBy
	if !systemFields[sortBy] {
		sortKey = "data." + sortBy
	}

	opts := options.Find().
		SetLimit(limit).
		SetSkip(offset).
		SetSort(bson.D{{Key: sortKey, Value: sortOrder}})

	cursor, err := r.Collection.Find(ctx, buildQuery(module, filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.Record{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RecordRepositoryImpl) Count(ctx context.Context, module permissions.Module, filter map[string]any) (int64, error) {
	return r.Collection.CountDocuments(ctx, buildQuery(module, filter))
}

// Update sets the given data fields; fields not named are kept
func (r *RecordRepositoryImpl) Update(ctx context.Context, module permissions.Module, id string, data map[string]any, userID string) error {
	oid, err := recordID(id)
	if err != nil {
		return err
	}

	set := bson.M{
		"updated_at": time.Now(),
		"updated_by": userID,
	}
	for k, v := range data {
		set["data."+k] = v
	}

	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "module": module, "deleted": bson.M{"$ne": true}},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete is a soft delete
func (r *RecordRepositoryImpl) Delete(ctx context.Context, module permissions.Module, id string, userID string) error {
	oid, err := recordID(id)
	if err != nil {
		return err
	}

	now := time.Now()
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "module": module, "deleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"deleted":    true,
			"deleted_at": now,
			"deleted_by": userID,
			"updated_at": now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "module", Value: 1},
				{Key: "deleted", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_module_deleted_created"),
		},
	}

	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
