package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletTransaction is the append-only statement journal. Every wallet
// mutation writes exactly one row in the same transaction as the balance
// change.
type WalletTransaction struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	Wallet       WalletKind         `json:"wallet" bson:"wallet"`
	Amount       float64            `json:"amount" bson:"amount"` // negative for debits
	BalanceAfter float64            `json:"balanceAfter" bson:"balanceAfter"`
	Reason       string             `json:"reason" bson:"reason"` // "task", "commission", "salary", "upgrade", "withdrawal", "withdrawal_refund"
	Reference    string             `json:"reference" bson:"reference"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
