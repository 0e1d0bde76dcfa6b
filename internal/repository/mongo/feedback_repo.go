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

// mongoFeedbackRepository implements repository.FeedbackRepository.
type mongoFeedbackRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoFeedbackRepository creates a new feedback repository.
func NewMongoFeedbackRepository(client *mongo.Client, db *mongo.Database) repository.FeedbackRepository {
	return &mongoFeedbackRepository{
		client:     client,
		collection: db.Collection(feedbackCollectionName),
	}
}

// Create stores a new unread message.
func (r *mongoFeedbackRepository) Create(ctx context.Context, msg *domain.Message) (string, error) {
	if msg.TrainerID == "" || msg.TraineeID == "" || msg.SenderID == "" {
		return "", errors.New("message requires trainerId, traineeId and senderId")
	}
	msg.ID = newID()
	msg.Read = false
	msg.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return "", translate(err)
	}
	return msg.ID, nil
}

// GetByID retrieves one message.
func (r *mongoFeedbackRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// List returns the messages matching filter, newest first.
func (r *mongoFeedbackRepository) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Message, error) {
	query := bson.M{}
	if filter.TrainerID != "" {
		query["trainerId"] = filter.TrainerID
	}
	if filter.TraineeID != "" {
		query["traineeId"] = filter.TraineeID
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []domain.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips every unread message the trainee sent to the trainer. The
// update runs in a transaction so readers never see a partially read pair.
func (r *mongoFeedbackRepository) MarkRead(ctx context.Context, trainerID, traineeID string) (int64, error) {
	filter := bson.M{
		"trainerId": trainerID,
		"traineeId": traineeID,
		"senderId":  traineeID,
		"read":      false,
	}
	var modified int64
	err := withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		result, err := r.collection.UpdateMany(sc, filter, bson.M{"$set": bson.M{"read": true}})
		if err != nil {
			return err
		}
		modified = result.ModifiedCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

// Delete removes one message.
func (r *mongoFeedbackRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountUnread counts unread messages addressed to the trainer.
func (r *mongoFeedbackRepository) CountUnread(ctx context.Context, trainerID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"trainerId": trainerID,
		"senderId":  bson.M{"$ne": trainerID},
		"read":      false,
	})
}

// EnsureFeedbackIndexes creates the participant indexes.
func EnsureFeedbackIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "traineeId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "traineeId", Value: 1}, {Key: "read", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
