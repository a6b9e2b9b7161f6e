package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SalaryBreakdown records the downline counts and the rule that produced the
// winning amount, stored alongside the payout.
type SalaryBreakdown struct {
	ALevel      int    `json:"aLevel" bson:"aLevel"`
	BLevel      int    `json:"bLevel" bson:"bLevel"`
	CLevel      int    `json:"cLevel" bson:"cLevel"`
	Total       int    `json:"total" bson:"total"`
	RuleApplied string `json:"ruleApplied" bson:"ruleApplied"`
}

// SalaryRecord is the monthly salary ledger row. A unique index on
// (userId, year, month) is the double-payment backstop.
type SalaryRecord struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Amount    float64            `json:"amount" bson:"amount"`
	Month     int                `json:"month" bson:"month"` // 1-12
	Year      int                `json:"year" bson:"year"`
	Breakdown SalaryBreakdown    `json:"breakdown" bson:"breakdown"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// SalaryResult is the informational calculation returned before any payout.
type SalaryResult struct {
	Amount    float64         `json:"amount"`
	Breakdown SalaryBreakdown `json:"breakdown"`
}
