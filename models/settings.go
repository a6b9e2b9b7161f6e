package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SalaryRule pairs a qualifying-referral threshold with the monthly amount it
// pays.
type SalaryRule struct {
	Threshold int     `json:"threshold" bson:"threshold" validate:"gte=0"`
	Amount    float64 `json:"amount" bson:"amount" validate:"gte=0"`
}

// SystemSettings is the singleton configuration record both engines read on
// every invocation. It is auto-created with defaults when absent and mutated
// only through the admin settings endpoint.
type SystemSettings struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	CommissionPercentA float64 `json:"commissionPercentA" bson:"commissionPercentA" validate:"gte=0,lte=100"`
	CommissionPercentB float64 `json:"commissionPercentB" bson:"commissionPercentB" validate:"gte=0,lte=100"`
	CommissionPercentC float64 `json:"commissionPercentC" bson:"commissionPercentC" validate:"gte=0,lte=100"`

	// Optional distinct percentages for membership purchases. Nil falls back
	// to the task percentages.
	UpgradePercentA *float64 `json:"upgradePercentA,omitempty" bson:"upgradePercentA,omitempty" validate:"omitempty,gte=0,lte=100"`
	UpgradePercentB *float64 `json:"upgradePercentB,omitempty" bson:"upgradePercentB,omitempty" validate:"omitempty,gte=0,lte=100"`
	UpgradePercentC *float64 `json:"upgradePercentC,omitempty" bson:"upgradePercentC,omitempty" validate:"omitempty,gte=0,lte=100"`

	// MaxReferralsPerUser caps the direct referrals counted for an A-level
	// commission. 0 means unlimited.
	MaxReferralsPerUser int `json:"maxReferralsPerUser" bson:"maxReferralsPerUser" validate:"gte=0"`

	SalaryDirect10  SalaryRule `json:"salaryDirect10" bson:"salaryDirect10"`
	SalaryDirect15  SalaryRule `json:"salaryDirect15" bson:"salaryDirect15"`
	SalaryDirect20  SalaryRule `json:"salaryDirect20" bson:"salaryDirect20"`
	SalaryNetwork40 SalaryRule `json:"salaryNetwork40" bson:"salaryNetwork40"`

	CommissionWallet WalletKind `json:"commissionWallet" bson:"commissionWallet" validate:"oneof=income personal"`
	SalaryWallet     WalletKind `json:"salaryWallet" bson:"salaryWallet" validate:"oneof=income personal"`

	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TaskPercent returns the task commission percentage for a referral level.
func (s *SystemSettings) TaskPercent(level CommissionLevel) float64 {
	switch level {
	case CommissionLevelA:
		return s.CommissionPercentA
	case CommissionLevelB:
		return s.CommissionPercentB
	default:
		return s.CommissionPercentC
	}
}

// UpgradePercent returns the membership-purchase percentage for a referral
// level, falling back to the task percentage when no distinct upgrade
// percentage is configured.
func (s *SystemSettings) UpgradePercent(level CommissionLevel) float64 {
	var p *float64
	switch level {
	case CommissionLevelA:
		p = s.UpgradePercentA
	case CommissionLevelB:
		p = s.UpgradePercentB
	default:
		p = s.UpgradePercentC
	}
	if p != nil {
		return *p
	}
	return s.TaskPercent(level)
}

// DefaultSettings returns the settings record seeded on first access.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		CommissionPercentA:  10,
		CommissionPercentB:  5,
		CommissionPercentC:  2,
		MaxReferralsPerUser: 0,
		SalaryDirect10:      SalaryRule{Threshold: 10, Amount: 5000},
		SalaryDirect15:      SalaryRule{Threshold: 15, Amount: 10000},
		SalaryDirect20:      SalaryRule{Threshold: 20, Amount: 20000},
		SalaryNetwork40:     SalaryRule{Threshold: 40, Amount: 48000},
		CommissionWallet:    WalletIncome,
		SalaryWallet:        WalletIncome,
		UpdatedAt:           time.Now(),
	}
}
