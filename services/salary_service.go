// services/salary_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jabezinu/foxriver-backend/models"
	"github.com/jabezinu/foxriver-backend/repositories"
)

// SalaryService computes monthly salary eligibility from the qualifying
// downline and pays at most once per user per calendar month. The unique
// index on (userId, year, month) is the transactional backstop against
// concurrent payout attempts.
type SalaryService struct {
	db          *mongo.Database
	users       *repositories.UserRepository
	settings    *SettingsService
	memberships *MembershipService
	wallets     *WalletService
}

func NewSalaryService(db *mongo.Database, users *repositories.UserRepository, settings *SettingsService, memberships *MembershipService, wallets *WalletService) *SalaryService {
	return &SalaryService{
		db:          db,
		users:       users,
		settings:    settings,
		memberships: memberships,
		wallets:     wallets,
	}
}

// CalculateMonthlySalary is the pure calculation: it walks the descendant
// tree three levels deep and selects the single largest qualifying rule. No
// side effects.
func (ss *SalaryService) CalculateMonthlySalary(ctx context.Context, userID primitive.ObjectID) (*models.SalaryResult, error) {
	user, err := ss.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("salary: user %s not found", userID.Hex())
	}

	settings, err := ss.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	ordinals, err := ss.memberships.OrdinalsByLevel(ctx)
	if err != nil {
		return nil, err
	}
	rootOrdinal, ok := ordinals[user.MembershipLevel]
	if !ok {
		return nil, fmt.Errorf("membership tier %q is not configured", user.MembershipLevel)
	}

	breakdown, err := ss.countQualifyingDownline(ctx, userID, rootOrdinal, ordinals)
	if err != nil {
		return nil, err
	}

	amount, rule := selectSalaryRule(breakdown, settings)
	breakdown.RuleApplied = rule
	return &models.SalaryResult{Amount: amount, Breakdown: breakdown}, nil
}

// countQualifyingDownline walks direct referrals, then the referrals of
// qualifying referrals, then theirs. Qualification is always judged against
// the ROOT user's ordinal, and only qualifying members seed the next level,
// so a non-qualifying branch never propagates further down.
func (ss *SalaryService) countQualifyingDownline(ctx context.Context, rootID primitive.ObjectID, rootOrdinal int, ordinals map[string]int) (models.SalaryBreakdown, error) {
	var breakdown models.SalaryBreakdown
	counts := []*int{&breakdown.ALevel, &breakdown.BLevel, &breakdown.CLevel}

	seeds := []primitive.ObjectID{rootID}
	for _, count := range counts {
		if len(seeds) == 0 {
			break
		}
		members, err := ss.users.FindByReferrers(ctx, seeds)
		if err != nil {
			return breakdown, err
		}

		var next []primitive.ObjectID
		for _, member := range members {
			if !qualifiesForRoot(&member, rootOrdinal, ordinals) {
				continue
			}
			*count++
			next = append(next, member.ID)
		}
		seeds = next
	}

	breakdown.Total = breakdown.ALevel + breakdown.BLevel + breakdown.CLevel
	return breakdown, nil
}

// qualifiesForRoot applies the eligibility rule for salary counting: not an
// Intern, and at an equal or lower rank than the user whose salary is being
// computed. Members on an unconfigured tier never qualify.
func qualifiesForRoot(member *models.User, rootOrdinal int, ordinals map[string]int) bool {
	if member.MembershipLevel == models.LevelIntern {
		return false
	}
	ordinal, ok := ordinals[member.MembershipLevel]
	if !ok {
		return false
	}
	return ordinal <= rootOrdinal
}

// selectSalaryRule evaluates all configured rules and keeps the highest
// qualifying amount, never the first match. Rules with a zero threshold are
// treated as disabled.
func selectSalaryRule(breakdown models.SalaryBreakdown, settings *models.SystemSettings) (float64, string) {
	best := 0.0
	rule := "none"

	if settings.SalaryNetwork40.Threshold > 0 && breakdown.Total >= settings.SalaryNetwork40.Threshold {
		best = settings.SalaryNetwork40.Amount
		rule = "network40"
	}

	directRules := []struct {
		name string
		cfg  models.SalaryRule
	}{
		{"direct20", settings.SalaryDirect20},
		{"direct15", settings.SalaryDirect15},
		{"direct10", settings.SalaryDirect10},
	}
	for _, dr := range directRules {
		if dr.cfg.Threshold > 0 && breakdown.ALevel >= dr.cfg.Threshold && dr.cfg.Amount > best {
			best = dr.cfg.Amount
			rule = dr.name
		}
	}

	return best, rule
}

// ProcessSalaryForUser pays the user's monthly salary once. It returns nil
// without error when the user was already paid this month or no salary is
// due; both are expected no-ops.
func (ss *SalaryService) ProcessSalaryForUser(ctx context.Context, user *models.User) (*models.SalaryRecord, error) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	err := ss.db.Collection("salary_records").FindOne(ctx, bson.M{
		"userId": user.ID,
		"month":  month,
		"year":   year,
	}).Err()
	if err == nil {
		return nil, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	result, err := ss.CalculateMonthlySalary(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if result.Amount == 0 {
		return nil, nil
	}

	settings, err := ss.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	record := models.SalaryRecord{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		Amount:    result.Amount,
		Month:     month,
		Year:      year,
		Breakdown: result.Breakdown,
		CreatedAt: now,
	}

	session, err := ss.db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// Insert first so a concurrent payout trips the unique index before
		// any wallet credit happens.
		if _, err := ss.db.Collection("salary_records").InsertOne(sc, record); err != nil {
			return nil, err
		}
		if _, err := ss.wallets.Apply(sc, user.ID, settings.SalaryWallet, result.Amount, "salary"); err != nil {
			return nil, err
		}
		_, err := ss.db.Collection("users").UpdateOne(sc,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{"lastSalaryDate": now, "updatedAt": now}},
		)
		return nil, err
	})
	if err != nil {
		if payoutAlreadyRecorded(err) {
			// Lost the race to a concurrent payout; the month is paid.
			return nil, nil
		}
		return nil, err
	}

	log.Printf("Salary paid: user %s, %s %.2f (%s)", user.ID.Hex(), settings.SalaryWallet, result.Amount, result.Breakdown.RuleApplied)
	return &record, nil
}

// payoutAlreadyRecorded reports whether a payout transaction failed because a
// concurrent run inserted this month's salary record first. The unique
// (userId, year, month) index turns that race into a duplicate key error, and
// losing it means the month is already paid, not that processing failed.
func payoutAlreadyRecorded(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// ProcessAllSalaries runs the payout for every active non-admin user,
// logging and skipping per-user failures. Used by the daily scheduler and
// the on-demand admin action.
func (ss *SalaryService) ProcessAllSalaries(ctx context.Context) (paid int, failed int, err error) {
	cursor, err := ss.db.Collection("users").Find(ctx, bson.M{
		"userType": bson.M{"$ne": "admin"},
		"isActive": true,
	})
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			failed++
			continue
		}
		record, err := ss.ProcessSalaryForUser(ctx, &user)
		if err != nil {
			log.Printf("Salary processing failed for user %s: %v", user.ID.Hex(), err)
			failed++
			continue
		}
		if record != nil {
			paid++
		}
	}
	return paid, failed, cursor.Err()
}
