package user

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

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]models.User, int64, error)
	Update(ctx context.Context, id string, user *models.User) error
	Delete(ctx context.Context, id string) error
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// Permission storage. Each call is a single-document atomic write.
	SetPermissions(ctx context.Context, id string, stored permissions.PartialMatrix) error
	SetModulePermission(ctx context.Context, id string, module permissions.Module, triple permissions.Triple) error
	SetRoleAndPermissions(ctx context.Context, id string, role permissions.Role, stored permissions.PartialMatrix) error
	AddMissingPermissions(ctx context.Context, id string, additions permissions.PartialMatrix) (bool, error)
	ForEach(ctx context.Context, fn func(models.User) error) error

	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrUserNotFound
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrUserNotFound
	}
	return err
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	_, err := r.Collection.InsertOne(ctx, user)
	return err
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]models.User, int64, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	opts := options.Find().SetProjection(bson.M{"password": 0})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update writes profile fields only. Role and permissions have their own writers.
func (r *UserRepositoryImpl) Update(ctx context.Context, id string, user *models.User) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"phone":      user.Phone,
			"status":     user.Status,
			"updated_at": user.UpdatedAt,
		},
	}

	return r.updateOne(ctx, oid, update)
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var objectIDs []primitive.ObjectID
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}

	if len(objectIDs) == 0 {
		return []models.User{}, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, oid, bson.M{"$set": bson.M{"last_login": at}})
}

func (r *UserRepositoryImpl) SetPermissions(ctx context.Context, id string, stored permissions.PartialMatrix) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, oid, bson.M{"$set": bson.M{
		"permissions": stored,
		"updated_at":  time.Now(),
	}})
}

// SetModulePermission replaces one module entry and leaves the others as stored
func (r *UserRepositoryImpl) SetModulePermission(ctx context.Context, id string, module permissions.Module, triple permissions.Triple) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, oid, bson.M{"$set": bson.M{
		"permissions." + string(module): triple,
		"updated_at":                    time.Now(),
	}})
}

func (r *UserRepositoryImpl) SetRoleAndPermissions(ctx context.Context, id string, role permissions.Role, stored permissions.PartialMatrix) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, oid, bson.M{"$set": bson.M{
		"role":        role,
		"permissions": stored,
		"updated_at":  time.Now(),
	}})
}

// AddMissingPermissions merges additions under the stored entries in one
// pipeline update. Keys already present in the document win, including keys
// written concurrently after the caller read the user.
func (r *UserRepositoryImpl) AddMissingPermissions(ctx context.Context, id string, additions permissions.PartialMatrix) (bool, error) {
	if len(additions) == 0 {
		return false, nil
	}
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"permissions": bson.M{"$mergeObjects": bson.A{
				bson.M{"$literal": additions},
				bson.M{"$ifNull": bson.A{"$permissions", bson.M{}}},
			}},
			"updated_at": "$$NOW",
		}}},
	}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, pipeline)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrUserNotFound
	}
	return res.ModifiedCount > 0, nil
}

// ForEach streams every user through fn, stopping at the first error
func (r *UserRepositoryImpl) ForEach(ctx context.Context, fn func(models.User) error) error {
	opts := options.Find().SetProjection(bson.M{"password": 0}).SetSort(bson.M{"_id": 1})
	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (r *UserRepositoryImpl) updateOne(ctx context.Context, oid primitive.ObjectID, update interface{}) error {
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_username").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_role_status"),
		},
	}

	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
