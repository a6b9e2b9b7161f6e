package models

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LevelIntern is the free entry level. Interns never generate commissions.
const LevelIntern = "Intern"

// MembershipTier is one row of the membership ledger. Ordinals are strictly
// increasing with rank (Intern=0 up to Rank10=10) and drive every
// "equal or lower rank" eligibility comparison.
type MembershipTier struct {
	ID                        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Level                     string             `json:"level" bson:"level"`
	Ordinal                   int                `json:"ordinal" bson:"ordinal"`
	Price                     float64            `json:"price" bson:"price"`
	PerVideoIncome            float64            `json:"perVideoIncome" bson:"perVideoIncome"`
	DailyIncome               float64            `json:"dailyIncome" bson:"dailyIncome"`
	CanWithdraw               bool               `json:"canWithdraw" bson:"canWithdraw"`
	CanUseTransactionPassword bool               `json:"canUseTransactionPassword" bson:"canUseTransactionPassword"`
	Hidden                    bool               `json:"hidden" bson:"hidden"`
	RestrictedRangeStart      *int               `json:"restrictedRangeStart,omitempty" bson:"restrictedRangeStart,omitempty"`
	RestrictedRangeEnd        *int               `json:"restrictedRangeEnd,omitempty" bson:"restrictedRangeEnd,omitempty"`
	CreatedAt                 time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt                 time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type UpdateTierRequest struct {
	Price  *float64 `json:"price" validate:"omitempty,gte=0"`
	Hidden *bool    `json:"hidden"`
}

type UpgradeRequest struct {
	Level string `json:"level" validate:"required"`
}

// DefaultTiers returns the seed membership ledger. The per-video and daily
// incomes are derived from the tier price the same way the production ledger
// was configured: one task pays price/25, five tasks a day.
func DefaultTiers() []MembershipTier {
	prices := []float64{0, 2500, 7500, 15000, 30000, 60000, 120000, 250000, 500000, 1000000, 2000000}
	tiers := make([]MembershipTier, 0, len(prices))
	for i, price := range prices {
		level := LevelIntern
		if i > 0 {
			level = "Rank " + strconv.Itoa(i)
		}
		perVideo := 0.0
		if price > 0 {
			perVideo = price / 25
		}
		tiers = append(tiers, MembershipTier{
			Level:                     level,
			Ordinal:                   i,
			Price:                     price,
			PerVideoIncome:            perVideo,
			DailyIncome:               perVideo * 5,
			CanWithdraw:               i > 0,
			CanUseTransactionPassword: i > 0,
		})
	}
	return tiers
}
