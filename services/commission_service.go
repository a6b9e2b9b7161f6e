// services/commission_service.go
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
	"github.com/jabezinu/foxriver-backend/repositories"
)

// CommissionService walks up to three levels of the referral chain on task
// completions and membership purchases, credits each qualifying ancestor and
// records the commission rows — all inside one transaction.
type CommissionService struct {
	db          *mongo.Database
	users       *repositories.UserRepository
	settings    *SettingsService
	memberships *MembershipService
	wallets     *WalletService
}

func NewCommissionService(db *mongo.Database, users *repositories.UserRepository, settings *SettingsService, memberships *MembershipService, wallets *WalletService) *CommissionService {
	return &CommissionService{
		db:          db,
		users:       users,
		settings:    settings,
		memberships: memberships,
		wallets:     wallets,
	}
}

// commissionTrigger is the normalized form of the two trigger kinds. The
// purchase ordinal is the purchased tier's ordinal for upgrades and the
// triggering user's current tier ordinal for task earnings.
type commissionTrigger struct {
	user            *models.User
	amount          float64
	purchaseOrdinal int
	taskID          *primitive.ObjectID
	sourceLevel     string
	upgrade         bool
}

// ancestorLink is one hop of the referral chain above the triggering user.
type ancestorLink struct {
	user            *models.User
	level           models.CommissionLevel
	directReferrals int64
}

var commissionLevels = []models.CommissionLevel{
	models.CommissionLevelA,
	models.CommissionLevelB,
	models.CommissionLevelC,
}

// CalculateAndCreateCommissions distributes commissions for a confirmed task
// completion. It returns the created ledger rows; an empty result is the
// normal outcome for users without referrers or with out-ranked ancestors.
func (cs *CommissionService) CalculateAndCreateCommissions(ctx context.Context, completion *models.TaskCompletion, amount float64) ([]models.CommissionRecord, error) {
	user, err := cs.users.FindByID(ctx, completion.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("commission: user %s not found", completion.UserID.Hex())
	}

	settings, err := cs.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	ordinals, err := cs.memberships.OrdinalsByLevel(ctx)
	if err != nil {
		return nil, err
	}
	ordinal, ok := ordinals[user.MembershipLevel]
	if !ok {
		return nil, fmt.Errorf("membership tier %q is not configured", user.MembershipLevel)
	}

	trigger := commissionTrigger{
		user:            user,
		amount:          amount,
		purchaseOrdinal: ordinal,
		taskID:          &completion.TaskID,
	}
	return cs.distribute(ctx, trigger, settings, ordinals)
}

// CalculateAndCreateMembershipCommissions distributes commissions for a
// membership purchase or upgrade, using the upgrade percentages when
// configured.
func (cs *CommissionService) CalculateAndCreateMembershipCommissions(ctx context.Context, user *models.User, tier *models.MembershipTier) ([]models.CommissionRecord, error) {
	settings, err := cs.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	ordinals, err := cs.memberships.OrdinalsByLevel(ctx)
	if err != nil {
		return nil, err
	}

	trigger := commissionTrigger{
		user:            user,
		amount:          tier.Price,
		purchaseOrdinal: tier.Ordinal,
		sourceLevel:     tier.Level,
		upgrade:         true,
	}
	return cs.distribute(ctx, trigger, settings, ordinals)
}

func (cs *CommissionService) distribute(ctx context.Context, trigger commissionTrigger, settings *models.SystemSettings, ordinals map[string]int) ([]models.CommissionRecord, error) {
	// Interns never generate commissions at any level.
	if trigger.user.MembershipLevel == models.LevelIntern {
		return nil, nil
	}

	chain, err := cs.loadAncestorChain(ctx, trigger.user)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}

	// The referral cap only applies to the direct referrer.
	if settings.MaxReferralsPerUser > 0 && chain[0].level == models.CommissionLevelA {
		count, err := cs.users.CountDirectReferrals(ctx, chain[0].user.ID)
		if err != nil {
			return nil, err
		}
		chain[0].directReferrals = count
	}

	records, err := planCommissions(trigger, chain, settings, ordinals)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	session, err := cs.db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		docs := make([]interface{}, 0, len(records))
		for i := range records {
			if _, err := cs.wallets.Apply(sc, records[i].BeneficiaryUserID, settings.CommissionWallet, records[i].AmountEarned, "commission"); err != nil {
				return nil, err
			}
			docs = append(docs, records[i])
		}
		if _, err := cs.db.Collection("commission_records").InsertMany(sc, docs); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Commission chain settled: %d record(s) for downline user %s", len(records), trigger.user.ID.Hex())
	return records, nil
}

// loadAncestorChain follows referrerId upward for at most three hops. The
// hop bound also protects against malformed cyclic referrer data. A missing
// referrer document ends the chain, it is not an error.
func (cs *CommissionService) loadAncestorChain(ctx context.Context, start *models.User) ([]ancestorLink, error) {
	var chain []ancestorLink
	current := start
	for _, level := range commissionLevels {
		if current.ReferrerID == nil {
			break
		}
		ancestor, err := cs.users.FindByID(ctx, *current.ReferrerID)
		if err != nil {
			return nil, err
		}
		if ancestor == nil {
			break
		}
		chain = append(chain, ancestorLink{user: ancestor, level: level})
		current = ancestor
	}
	return chain, nil
}

// planCommissions evaluates eligibility per level and prices the qualifying
// credits. An ancestor earns only from descendants at an equal or lower rank;
// an over-cap direct referrer is skipped without stopping the chain.
func planCommissions(trigger commissionTrigger, chain []ancestorLink, settings *models.SystemSettings, ordinals map[string]int) ([]models.CommissionRecord, error) {
	if trigger.user.MembershipLevel == models.LevelIntern {
		return nil, nil
	}

	now := time.Now()
	var records []models.CommissionRecord
	for _, link := range chain {
		ancestorOrdinal, ok := ordinals[link.user.MembershipLevel]
		if !ok {
			return nil, fmt.Errorf("membership tier %q is not configured", link.user.MembershipLevel)
		}

		if link.level == models.CommissionLevelA && settings.MaxReferralsPerUser > 0 &&
			link.directReferrals > int64(settings.MaxReferralsPerUser) {
			continue
		}

		if trigger.purchaseOrdinal > ancestorOrdinal {
			continue
		}

		percent := settings.TaskPercent(link.level)
		if trigger.upgrade {
			percent = settings.UpgradePercent(link.level)
		}

		records = append(records, models.CommissionRecord{
			ID:                    primitive.NewObjectID(),
			BeneficiaryUserID:     link.user.ID,
			DownlineUserID:        trigger.user.ID,
			Level:                 link.level,
			Percentage:            percent,
			AmountEarned:          trigger.amount * percent / 100,
			SourceTaskID:          trigger.taskID,
			SourceMembershipLevel: trigger.sourceLevel,
			CreatedAt:             now,
		})
	}
	return records, nil
}

// ListForBeneficiary returns a user's commission ledger rows, newest first.
func (cs *CommissionService) ListForBeneficiary(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.CommissionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := cs.db.Collection("commission_records").Find(ctx, bson.M{"beneficiaryUserId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.CommissionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
