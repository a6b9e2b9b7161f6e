package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jabezinu/foxriver-backend/models"
)

// fakeWalletStore applies deltas to an in-memory user, mirroring the
// return-after-update semantics of the Mongo store.
type fakeWalletStore struct {
	user    *models.User
	journal []models.WalletTransaction
}

func (f *fakeWalletStore) applyDelta(_ context.Context, _ primitive.ObjectID, field string, amount float64, _ time.Time) (*models.User, error) {
	switch field {
	case "incomeWallet":
		f.user.IncomeWallet += amount
	case "personalWallet":
		f.user.PersonalWallet += amount
	}
	return f.user, nil
}

func (f *fakeWalletStore) insertJournal(_ context.Context, entry models.WalletTransaction) error {
	f.journal = append(f.journal, entry)
	return nil
}

func TestApplyCreditWritesJournalRow(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeWalletStore{user: &models.User{ID: userID, IncomeWallet: 100}}
	ws := &WalletService{store: store}

	balance, err := ws.Apply(context.Background(), userID, models.WalletIncome, 40, "commission")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 140 {
		t.Errorf("expected balance 140, got %v", balance)
	}
	if len(store.journal) != 1 {
		t.Fatalf("expected exactly one journal row, got %d", len(store.journal))
	}
	entry := store.journal[0]
	if entry.UserID != userID {
		t.Errorf("journal row references wrong user")
	}
	if entry.Wallet != models.WalletIncome {
		t.Errorf("expected income wallet, got %s", entry.Wallet)
	}
	if entry.Amount != 40 {
		t.Errorf("expected amount 40, got %v", entry.Amount)
	}
	if entry.BalanceAfter != 140 {
		t.Errorf("expected balanceAfter 140, got %v", entry.BalanceAfter)
	}
	if entry.Reason != "commission" {
		t.Errorf("expected reason commission, got %q", entry.Reason)
	}
	if entry.Reference == "" {
		t.Errorf("expected a journal reference")
	}
}

func TestApplyDebitRecordsNegativeAmount(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeWalletStore{user: &models.User{ID: userID, PersonalWallet: 100}}
	ws := &WalletService{store: store}

	balance, err := ws.Apply(context.Background(), userID, models.WalletPersonal, -60, "withdrawal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 40 {
		t.Errorf("expected balance 40, got %v", balance)
	}
	entry := store.journal[0]
	if entry.Amount != -60 {
		t.Errorf("expected journal amount -60, got %v", entry.Amount)
	}
	if entry.BalanceAfter != 40 {
		t.Errorf("expected balanceAfter 40, got %v", entry.BalanceAfter)
	}
}

func TestApplyOverdraftAbortsWithoutJournal(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeWalletStore{user: &models.User{ID: userID, PersonalWallet: 30}}
	ws := &WalletService{store: store}

	_, err := ws.Apply(context.Background(), userID, models.WalletPersonal, -50, "withdrawal")
	if err == nil {
		t.Fatal("expected overdraft error")
	}
	if len(store.journal) != 0 {
		t.Errorf("no journal row may be written for a rejected mutation, got %d", len(store.journal))
	}
}

func TestApplyDebitToExactlyZeroAllowed(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeWalletStore{user: &models.User{ID: userID, IncomeWallet: 25}}
	ws := &WalletService{store: store}

	balance, err := ws.Apply(context.Background(), userID, models.WalletIncome, -25, "withdrawal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected balance 0, got %v", balance)
	}
	if len(store.journal) != 1 {
		t.Errorf("expected one journal row, got %d", len(store.journal))
	}
}

func TestApplyUnknownWalletKindRejected(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &fakeWalletStore{user: &models.User{ID: userID}}
	ws := &WalletService{store: store}

	if _, err := ws.Apply(context.Background(), userID, models.WalletKind("savings"), 10, "task"); err == nil {
		t.Fatal("expected error for unknown wallet kind")
	}
	if len(store.journal) != 0 {
		t.Errorf("expected no journal rows, got %d", len(store.journal))
	}
}

func TestWalletField(t *testing.T) {
	tests := []struct {
		kind    models.WalletKind
		want    string
		wantErr bool
	}{
		{models.WalletIncome, "incomeWallet", false},
		{models.WalletPersonal, "personalWallet", false},
		{models.WalletKind("savings"), "", true},
		{models.WalletKind(""), "", true},
	}
	for _, tt := range tests {
		field, err := walletField(tt.kind)
		if tt.wantErr {
			if err == nil {
				t.Errorf("kind %q: expected error", tt.kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("kind %q: unexpected error: %v", tt.kind, err)
		}
		if field != tt.want {
			t.Errorf("kind %q: expected field %q, got %q", tt.kind, tt.want, field)
		}
	}
}

func TestWalletUpdateIncrement(t *testing.T) {
	now := time.Now()
	update := walletUpdate("incomeWallet", 12.5, now)

	inc, ok := update["$inc"].(bson.M)
	if !ok {
		t.Fatal("expected $inc clause")
	}
	if inc["incomeWallet"] != 12.5 {
		t.Errorf("expected increment 12.5, got %v", inc["incomeWallet"])
	}

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatal("expected $set clause")
	}
	if set["updatedAt"] != now {
		t.Errorf("expected updatedAt to be set")
	}
}

func TestWalletUpdateDebit(t *testing.T) {
	update := walletUpdate("personalWallet", -40, time.Now())
	inc := update["$inc"].(bson.M)
	if inc["personalWallet"] != -40.0 {
		t.Errorf("expected debit of -40, got %v", inc["personalWallet"])
	}
}

func TestUserWalletBalance(t *testing.T) {
	u := &models.User{IncomeWallet: 100, PersonalWallet: 30}
	if u.WalletBalance(models.WalletIncome) != 100 {
		t.Errorf("expected income balance 100")
	}
	if u.WalletBalance(models.WalletPersonal) != 30 {
		t.Errorf("expected personal balance 30")
	}
}
