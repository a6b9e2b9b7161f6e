package services

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jabezinu/foxriver-backend/models"
)

func TestSelectSalaryRuleNoneQualifies(t *testing.T) {
	amount, rule := selectSalaryRule(models.SalaryBreakdown{ALevel: 3, Total: 5}, testSettings())
	if amount != 0 || rule != "none" {
		t.Fatalf("expected 0/none, got %v/%s", amount, rule)
	}
}

func TestSelectSalaryRuleDirectTiers(t *testing.T) {
	tests := []struct {
		name       string
		aLevel     int
		wantAmount float64
		wantRule   string
	}{
		{"below lowest threshold", 9, 0, "none"},
		{"direct10", 10, 5000, "direct10"},
		{"direct15", 16, 10000, "direct15"},
		{"direct20", 25, 20000, "direct20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown := models.SalaryBreakdown{ALevel: tt.aLevel, Total: tt.aLevel}
			amount, rule := selectSalaryRule(breakdown, testSettings())
			if amount != tt.wantAmount || rule != tt.wantRule {
				t.Errorf("expected %v/%s, got %v/%s", tt.wantAmount, tt.wantRule, amount, rule)
			}
		})
	}
}

func TestSelectSalaryRuleNetworkWinsAsLargerAmount(t *testing.T) {
	// 20 direct referrals and a 41-strong network qualify both direct20
	// (20000) and network40 (48000); the larger amount wins.
	breakdown := models.SalaryBreakdown{ALevel: 20, BLevel: 15, CLevel: 6, Total: 41}
	amount, rule := selectSalaryRule(breakdown, testSettings())
	if amount != 48000 {
		t.Errorf("expected 48000, got %v", amount)
	}
	if rule != "network40" {
		t.Errorf("expected network40, got %s", rule)
	}
}

func TestSelectSalaryRuleKeepsMaximumNotFirstMatch(t *testing.T) {
	// When the network amount is configured below a qualifying direct
	// amount, the direct rule overrides it.
	settings := testSettings()
	settings.SalaryNetwork40.Amount = 12000

	breakdown := models.SalaryBreakdown{ALevel: 20, BLevel: 15, CLevel: 6, Total: 41}
	amount, rule := selectSalaryRule(breakdown, settings)
	if amount != 20000 {
		t.Errorf("expected direct20 amount 20000 to override, got %v", amount)
	}
	if rule != "direct20" {
		t.Errorf("expected direct20, got %s", rule)
	}
}

func TestSelectSalaryRuleMonotonicSelection(t *testing.T) {
	// For any downline qualifying multiple thresholds the selected amount is
	// the maximum of the qualifying amounts.
	settings := testSettings()
	breakdown := models.SalaryBreakdown{ALevel: 50, BLevel: 0, CLevel: 0, Total: 50}
	amount, _ := selectSalaryRule(breakdown, settings)
	for _, qualifying := range []float64{settings.SalaryDirect10.Amount, settings.SalaryDirect15.Amount, settings.SalaryDirect20.Amount, settings.SalaryNetwork40.Amount} {
		if amount < qualifying {
			t.Fatalf("selected %v but a qualifying rule pays %v", amount, qualifying)
		}
	}
}

func TestSelectSalaryRuleZeroThresholdDisabled(t *testing.T) {
	settings := testSettings()
	settings.SalaryDirect10.Threshold = 0

	amount, rule := selectSalaryRule(models.SalaryBreakdown{ALevel: 0, Total: 0}, settings)
	if amount != 0 || rule != "none" {
		t.Fatalf("zero-threshold rule must be disabled, got %v/%s", amount, rule)
	}
}

func TestQualifiesForRoot(t *testing.T) {
	ordinals := testOrdinals()
	tests := []struct {
		name        string
		level       string
		rootOrdinal int
		want        bool
	}{
		{"intern never qualifies", models.LevelIntern, 3, false},
		{"equal rank qualifies", "Rank 2", 2, true},
		{"lower rank qualifies", "Rank 1", 2, true},
		{"higher rank does not", "Rank 3", 2, false},
		{"unconfigured tier does not", "Rank 99", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := testUser(tt.level)
			if got := qualifiesForRoot(member, tt.rootOrdinal, ordinals); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPayoutAlreadyRecordedClassifiesDuplicateKeys(t *testing.T) {
	// The shapes the driver surfaces a unique-index violation in: a write
	// exception from InsertOne, and a command error from a transaction.
	writeDup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	if !payoutAlreadyRecorded(writeDup) {
		t.Error("a duplicate-key write exception means the month is paid")
	}
	cmdDup := mongo.CommandError{Code: 11000}
	if !payoutAlreadyRecorded(cmdDup) {
		t.Error("a duplicate-key command error means the month is paid")
	}
}

func TestPayoutAlreadyRecordedPassesThroughOtherErrors(t *testing.T) {
	if payoutAlreadyRecorded(errors.New("connection reset")) {
		t.Error("an unrelated failure must not be swallowed as already-paid")
	}
	if payoutAlreadyRecorded(mongo.CommandError{Code: 112}) {
		t.Error("a transient transaction error must not be swallowed as already-paid")
	}
	if payoutAlreadyRecorded(nil) {
		t.Error("nil is not a duplicate key")
	}
}
