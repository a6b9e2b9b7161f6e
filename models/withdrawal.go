package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Withdrawal struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	Wallet          WalletKind          `bson:"wallet" json:"wallet"`
	Amount          float64             `bson:"amount" json:"amount"`
	Status          string              `bson:"status" json:"status"` // "pending", "approved", "rejected"
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	ProcessedAt     *time.Time          `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	AdminID         *primitive.ObjectID `bson:"adminId,omitempty" json:"adminId,omitempty"`
	AdminNote       string              `bson:"adminNote,omitempty" json:"adminNote,omitempty"`
	RejectionReason string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
}

type WithdrawalRequest struct {
	Amount              float64    `json:"amount" validate:"required,gt=0"`
	Wallet              WalletKind `json:"wallet" validate:"required,oneof=income personal"`
	TransactionPassword string     `json:"transactionPassword"`
}

type WithdrawalDecisionRequest struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected"`
	AdminNote       string `json:"adminNote"`
	RejectionReason string `json:"rejectionReason"`
}
