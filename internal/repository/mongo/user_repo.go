package mongo

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a profile under the identity subject it belongs to.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		return errors.New("user id is required")
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

// GetByID retrieves a profile by identity subject.
func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// List returns the profiles matching filter, ordered by display name.
func (r *mongoUserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.TrainerID != "" {
		query["trainerId"] = filter.TrainerID
	}
	if filter.Unassigned {
		query["role"] = domain.RoleTrainee
		query["trainerId"] = nil // matches both null and missing
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "displayName", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies the non-nil fields of patch.
func (r *mongoUserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.DisplayName != nil {
		set["displayName"] = *patch.DisplayName
	}
	if patch.AvatarKey != nil {
		set["avatarKey"] = *patch.AvatarKey
	}
	update := bson.M{}
	switch {
	case patch.ClearTrainer:
		update["$unset"] = bson.M{"trainerId": ""}
	case patch.TrainerID != nil:
		set["trainerId"] = *patch.TrainerID
	}
	update["$set"] = set

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClaimTrainee assigns trainerID to a trainee that has no trainer yet. The
// filter makes the assignment first-writer-wins.
func (r *mongoUserRepository) ClaimTrainee(ctx context.Context, traineeID, trainerID string) error {
	filter := bson.M{
		"_id":       traineeID,
		"role":      domain.RoleTrainee,
		"trainerId": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"trainerId": trainerID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the trainee does not exist or someone else got there first.
		if _, err := r.GetByID(ctx, traineeID); err != nil {
			return err
		}
		return repository.ErrUpdateFailed
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}}, // Index for finding trainees by trainer
			Options: options.Index().SetSparse(true),      // Sparse because not all users have trainerId
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
