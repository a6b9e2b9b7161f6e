// services/membership_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jabezinu/foxriver-backend/models"
)

// MembershipService is the read side of the membership ledger plus the admin
// price/visibility edits. Engines resolve ordinals through it on every
// calculation; a level referenced by a user but missing here is a fatal
// configuration error, never silently defaulted.
type MembershipService struct {
	db *mongo.Database
}

func NewMembershipService(db *mongo.Database) *MembershipService {
	return &MembershipService{db: db}
}

// EnsureDefaultTiers seeds any missing tier rows at startup. Existing rows
// are left untouched so admin price edits survive restarts.
func (ms *MembershipService) EnsureDefaultTiers(ctx context.Context) error {
	coll := ms.db.Collection("membership_tiers")
	for _, tier := range models.DefaultTiers() {
		count, err := coll.CountDocuments(ctx, bson.M{"level": tier.Level})
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		tier.ID = primitive.NewObjectID()
		tier.CreatedAt = time.Now()
		tier.UpdatedAt = tier.CreatedAt
		if _, err := coll.InsertOne(ctx, tier); err != nil {
			return err
		}
		log.Printf("Seeded membership tier %s (ordinal %d)", tier.Level, tier.Ordinal)
	}
	return nil
}

// TierByLevel resolves one ledger row by level name.
func (ms *MembershipService) TierByLevel(ctx context.Context, level string) (*models.MembershipTier, error) {
	var tier models.MembershipTier
	err := ms.db.Collection("membership_tiers").FindOne(ctx, bson.M{"level": level}).Decode(&tier)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("membership tier %q is not configured", level)
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// OrdinalsByLevel returns the level-name to ordinal mapping used by every
// eligibility comparison.
func (ms *MembershipService) OrdinalsByLevel(ctx context.Context) (map[string]int, error) {
	cursor, err := ms.db.Collection("membership_tiers").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ordinals := make(map[string]int)
	for cursor.Next(ctx) {
		var tier models.MembershipTier
		if err := cursor.Decode(&tier); err != nil {
			return nil, err
		}
		ordinals[tier.Level] = tier.Ordinal
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ordinals, nil
}

// VisibleTiers lists the non-hidden tiers in rank order for the client app.
func (ms *MembershipService) VisibleTiers(ctx context.Context) ([]models.MembershipTier, error) {
	cursor, err := ms.db.Collection("membership_tiers").Find(
		ctx,
		bson.M{"hidden": false},
		options.Find().SetSort(bson.D{{Key: "ordinal", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tiers []models.MembershipTier
	if err := cursor.All(ctx, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// UpdateTier applies an admin price/visibility edit.
func (ms *MembershipService) UpdateTier(ctx context.Context, level string, req *models.UpdateTierRequest) (*models.MembershipTier, error) {
	set := bson.M{"updatedAt": time.Now()}
	if req.Price != nil {
		set["price"] = *req.Price
		if *req.Price > 0 {
			set["perVideoIncome"] = *req.Price / 25
			set["dailyIncome"] = *req.Price / 25 * 5
		}
	}
	if req.Hidden != nil {
		set["hidden"] = *req.Hidden
	}

	var tier models.MembershipTier
	err := ms.db.Collection("membership_tiers").FindOneAndUpdate(
		ctx,
		bson.M{"level": level},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&tier)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("membership tier %q is not configured", level)
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}
