package services

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jabezinu/foxriver-backend/models"
)

func testOrdinals() map[string]int {
	return map[string]int{
		models.LevelIntern: 0,
		"Rank 1":           1,
		"Rank 2":           2,
		"Rank 3":           3,
	}
}

func testSettings() *models.SystemSettings {
	s := models.DefaultSettings()
	return &s
}

func testUser(level string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), MembershipLevel: level}
}

func taskTrigger(user *models.User, amount float64, ordinal int) commissionTrigger {
	taskID := primitive.NewObjectID()
	return commissionTrigger{
		user:            user,
		amount:          amount,
		purchaseOrdinal: ordinal,
		taskID:          &taskID,
	}
}

func TestPlanCommissionsDirectReferrerEligible(t *testing.T) {
	// Rank 1 user completes a 100 ETB task under a Rank 2 referrer: 1 <= 2,
	// so the referrer earns the A-level 10%.
	u := testUser("Rank 1")
	r := testUser("Rank 2")
	chain := []ancestorLink{{user: r, level: models.CommissionLevelA}}

	records, err := planCommissions(taskTrigger(u, 100, 1), chain, testSettings(), testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Level != models.CommissionLevelA {
		t.Errorf("expected level A, got %s", rec.Level)
	}
	if rec.AmountEarned != 10 {
		t.Errorf("expected amount 10, got %v", rec.AmountEarned)
	}
	if rec.Percentage != 10 {
		t.Errorf("expected percentage 10, got %v", rec.Percentage)
	}
	if rec.BeneficiaryUserID != r.ID {
		t.Errorf("record credits wrong beneficiary")
	}
	if rec.DownlineUserID != u.ID {
		t.Errorf("record references wrong downline user")
	}
}

func TestPlanCommissionsAncestorBelowRankNotCredited(t *testing.T) {
	// An Intern (ordinal 0) referrer of a Rank 1 user earns nothing: the
	// descendant out-ranks the ancestor.
	u := testUser("Rank 1")
	r := testUser(models.LevelIntern)
	chain := []ancestorLink{{user: r, level: models.CommissionLevelA}}

	records, err := planCommissions(taskTrigger(u, 100, 1), chain, testSettings(), testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records for out-ranked ancestor, got %d", len(records))
	}
}

func TestPlanCommissionsInternTriggerNeverPays(t *testing.T) {
	u := testUser(models.LevelIntern)
	chain := []ancestorLink{
		{user: testUser("Rank 3"), level: models.CommissionLevelA},
		{user: testUser("Rank 3"), level: models.CommissionLevelB},
		{user: testUser("Rank 3"), level: models.CommissionLevelC},
	}

	records, err := planCommissions(taskTrigger(u, 500, 0), chain, testSettings(), testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("intern trigger must create no commissions, got %d", len(records))
	}
}

func TestPlanCommissionsNoLeakAboveRank(t *testing.T) {
	// Every ancestor is out-ranked by the purchase ordinal: nothing is paid
	// at any level.
	u := testUser("Rank 3")
	chain := []ancestorLink{
		{user: testUser("Rank 1"), level: models.CommissionLevelA},
		{user: testUser("Rank 2"), level: models.CommissionLevelB},
		{user: testUser("Rank 1"), level: models.CommissionLevelC},
	}

	records, err := planCommissions(taskTrigger(u, 1000, 3), chain, testSettings(), testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestPlanCommissionsThreeLevelPercentages(t *testing.T) {
	u := testUser("Rank 1")
	chain := []ancestorLink{
		{user: testUser("Rank 1"), level: models.CommissionLevelA},
		{user: testUser("Rank 2"), level: models.CommissionLevelB},
		{user: testUser("Rank 3"), level: models.CommissionLevelC},
	}

	records, err := planCommissions(taskTrigger(u, 200, 1), chain, testSettings(), testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	wantAmounts := map[models.CommissionLevel]float64{
		models.CommissionLevelA: 20, // 10%
		models.CommissionLevelB: 10, // 5%
		models.CommissionLevelC: 4,  // 2%
	}
	for _, rec := range records {
		if rec.AmountEarned != wantAmounts[rec.Level] {
			t.Errorf("level %s: expected %v, got %v", rec.Level, wantAmounts[rec.Level], rec.AmountEarned)
		}
	}
}

func TestPlanCommissionsPerLevelEligibilityIsIndependent(t *testing.T) {
	// A-level ancestor is out-ranked but the B-level ancestor is not; only B
	// is credited.
	u := testUser("Rank 2")
	chain := []ancestorLink{
		{user: testUser("Rank 1"), level: models.CommissionLevelA},
		{user: testUser("Rank 3"), level: models.CommissionLevelB},
	}

	records, err := planCommissions(taskTrigger(u, 100, 2), chain, testSettings(), testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Level != models.CommissionLevelB {
		t.Errorf("expected B-level record, got %s", records[0].Level)
	}
}

func TestPlanCommissionsReferralCapSkipsOnlyALevel(t *testing.T) {
	settings := testSettings()
	settings.MaxReferralsPerUser = 2

	u := testUser("Rank 1")
	chain := []ancestorLink{
		{user: testUser("Rank 2"), level: models.CommissionLevelA, directReferrals: 3},
		{user: testUser("Rank 2"), level: models.CommissionLevelB},
		{user: testUser("Rank 2"), level: models.CommissionLevelC},
	}

	records, err := planCommissions(taskTrigger(u, 100, 1), chain, settings, testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected B and C records only, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Level == models.CommissionLevelA {
			t.Errorf("over-cap A-level ancestor must not be credited")
		}
	}
}

func TestPlanCommissionsReferralCapAtLimitStillPays(t *testing.T) {
	// The cap skips only when the count exceeds it, not when it equals it.
	settings := testSettings()
	settings.MaxReferralsPerUser = 3

	u := testUser("Rank 1")
	chain := []ancestorLink{
		{user: testUser("Rank 2"), level: models.CommissionLevelA, directReferrals: 3},
	}

	records, err := planCommissions(taskTrigger(u, 100, 1), chain, settings, testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record at the cap boundary, got %d", len(records))
	}
}

func TestPlanCommissionsUpgradeUsesUpgradePercentWithFallback(t *testing.T) {
	settings := testSettings()
	upgradeA := 8.0
	settings.UpgradePercentA = &upgradeA // B and C fall back to task percentages

	u := testUser("Rank 2")
	chain := []ancestorLink{
		{user: testUser("Rank 2"), level: models.CommissionLevelA},
		{user: testUser("Rank 3"), level: models.CommissionLevelB},
	}
	trigger := commissionTrigger{
		user:            u,
		amount:          1000,
		purchaseOrdinal: 2,
		sourceLevel:     "Rank 2",
		upgrade:         true,
	}

	records, err := planCommissions(trigger, chain, settings, testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		switch rec.Level {
		case models.CommissionLevelA:
			if rec.Percentage != 8 || rec.AmountEarned != 80 {
				t.Errorf("A-level: expected 8%% / 80, got %v%% / %v", rec.Percentage, rec.AmountEarned)
			}
		case models.CommissionLevelB:
			if rec.Percentage != 5 || rec.AmountEarned != 50 {
				t.Errorf("B-level fallback: expected 5%% / 50, got %v%% / %v", rec.Percentage, rec.AmountEarned)
			}
		}
		if rec.SourceMembershipLevel != "Rank 2" {
			t.Errorf("expected source membership level on upgrade records")
		}
	}
}

func TestPlanCommissionsUnconfiguredTierIsFatal(t *testing.T) {
	u := testUser("Rank 1")
	chain := []ancestorLink{{user: testUser("Rank 99"), level: models.CommissionLevelA}}

	_, err := planCommissions(taskTrigger(u, 100, 1), chain, testSettings(), testOrdinals())
	if err == nil {
		t.Fatal("expected configuration error for unconfigured ancestor tier")
	}
}

func TestPlanCommissionsEmptyChain(t *testing.T) {
	records, err := planCommissions(taskTrigger(testUser("Rank 1"), 100, 1), nil, testSettings(), testOrdinals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records without ancestors, got %d", len(records))
	}
}
