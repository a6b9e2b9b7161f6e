package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jabezinu/foxriver-backend/models"
)

type UserRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns the user or nil when no document exists.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountDirectReferrals counts the users whose referrerId points at the given
// user. Used by the A-level commission cap.
func (r *UserRepository) CountDirectReferrals(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.db.Collection("users").CountDocuments(ctx, bson.M{"referrerId": id})
}

// FindByReferrers returns all users whose referrerId is one of the given
// ids. This is one breadth step of the downline walk.
func (r *UserRepository) FindByReferrers(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	cursor, err := r.db.Collection("users").Find(ctx, bson.M{"referrerId": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
