// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletKind selects which of a user's two wallets a payout lands in.
type WalletKind string

const (
	WalletIncome   WalletKind = "income"
	WalletPersonal WalletKind = "personal"
)

// User model
type User struct {
	ID                    primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Phone                 string              `json:"phone" bson:"phone"`
	FullName              string              `json:"fullName" bson:"fullName"`
	UserType              string              `json:"userType" bson:"userType"` // "user", "admin"
	IsActive              bool                `json:"isActive" bson:"isActive"`
	MembershipLevel       string              `json:"membershipLevel" bson:"membershipLevel"`
	MembershipActivatedAt *time.Time          `json:"membershipActivatedAt,omitempty" bson:"membershipActivatedAt,omitempty"`
	ReferrerID            *primitive.ObjectID `json:"referrerId,omitempty" bson:"referrerId,omitempty"`
	ReferralCode          string              `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
	IncomeWallet          float64             `json:"incomeWallet" bson:"incomeWallet"`
	PersonalWallet        float64             `json:"personalWallet" bson:"personalWallet"`
	TransactionPassword   string              `json:"-" bson:"transactionPassword,omitempty"`
	LastSalaryDate        *time.Time          `json:"lastSalaryDate,omitempty" bson:"lastSalaryDate,omitempty"`
	CreatedAt             time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// WalletBalance returns the balance of the given wallet kind.
func (u *User) WalletBalance(kind WalletKind) float64 {
	if kind == WalletPersonal {
		return u.PersonalWallet
	}
	return u.IncomeWallet
}

type ReferralData struct {
	ReferralCode  string `json:"referralCode"`
	ReferralCount int    `json:"referralCount"`
	ReferralLink  string `json:"referralLink"`
}

type TeamSummary struct {
	ALevel int `json:"aLevel"`
	BLevel int `json:"bLevel"`
	CLevel int `json:"cLevel"`
	Total  int `json:"total"`
}

type SetTransactionPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
