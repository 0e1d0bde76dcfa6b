package mongo

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoAccountRepository implements repository.AccountRepository.
type mongoAccountRepository struct {
	collection *mongo.Collection
}

// NewMongoAccountRepository creates a new Account repository.
func NewMongoAccountRepository(db *mongo.Database) repository.AccountRepository {
	return &mongoAccountRepository{
		collection: db.Collection(accountCollectionName),
	}
}

// Create inserts a new account. Emails are stored lower-cased and unique.
func (r *mongoAccountRepository) Create(ctx context.Context, account *domain.Account) (string, error) {
	if account.Email == "" || account.PasswordHash == "" {
		return "", errors.New("account email and password hash are required")
	}
	account.ID = newID()
	account.Email = strings.ToLower(account.Email)
	account.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, account); err != nil {
		return "", translate(err)
	}
	return account.ID, nil
}

// GetByEmail retrieves an account by email address.
func (r *mongoAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&account)
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByID retrieves an account by id.
func (r *mongoAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account); err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// EnsureAccountIndexes makes email unique.
func EnsureAccountIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
