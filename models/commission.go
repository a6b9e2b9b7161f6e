package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionLevel is the referral distance between the beneficiary and the
// user whose event produced the commission.
type CommissionLevel string

const (
	CommissionLevelA CommissionLevel = "A" // direct referral
	CommissionLevelB CommissionLevel = "B" // two hops
	CommissionLevelC CommissionLevel = "C" // three hops
)

// CommissionRecord is one row of the append-only commission ledger. Rows are
// inserted in the same transaction as the wallet credit they represent and are
// never updated or deleted.
type CommissionRecord struct {
	ID                    primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	BeneficiaryUserID     primitive.ObjectID  `json:"beneficiaryUserId" bson:"beneficiaryUserId"`
	DownlineUserID        primitive.ObjectID  `json:"downlineUserId" bson:"downlineUserId"`
	Level                 CommissionLevel     `json:"level" bson:"level"`
	Percentage            float64             `json:"percentage" bson:"percentage"`
	AmountEarned          float64             `json:"amountEarned" bson:"amountEarned"`
	SourceTaskID          *primitive.ObjectID `json:"sourceTaskId,omitempty" bson:"sourceTaskId,omitempty"`
	SourceMembershipLevel string              `json:"sourceMembershipLevel,omitempty" bson:"sourceMembershipLevel,omitempty"`
	CreatedAt             time.Time           `json:"createdAt" bson:"createdAt"`
}
