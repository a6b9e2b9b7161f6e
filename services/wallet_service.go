// services/wallet_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jabezinu/foxriver-backend/models"
)

// WalletService is the settlement primitive shared by the commission and
// salary engines and the withdrawal flow. Apply never opens its own
// transaction: callers pass a session context so the balance change and the
// journal row commit or roll back as one unit with the caller's ledger
// writes.
type WalletService struct {
	store walletStore
}

// walletStore isolates the two collection writes behind Apply so the
// settlement rules can be exercised without a database.
type walletStore interface {
	applyDelta(ctx context.Context, userID primitive.ObjectID, field string, amount float64, now time.Time) (*models.User, error)
	insertJournal(ctx context.Context, entry models.WalletTransaction) error
}

func NewWalletService(db *mongo.Database) *WalletService {
	return &WalletService{store: &mongoWalletStore{db: db}}
}

// walletField maps a wallet kind to the user document field it mutates.
func walletField(kind models.WalletKind) (string, error) {
	switch kind {
	case models.WalletIncome:
		return "incomeWallet", nil
	case models.WalletPersonal:
		return "personalWallet", nil
	default:
		return "", fmt.Errorf("unknown wallet kind %q", kind)
	}
}

// walletUpdate builds the atomic increment applied to the user document.
func walletUpdate(field string, amount float64, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{field: amount},
		"$set": bson.M{"updatedAt": now},
	}
}

// journalEntry builds the statement row recorded alongside a balance change.
func journalEntry(userID primitive.ObjectID, kind models.WalletKind, amount, balanceAfter float64, reason string, now time.Time) models.WalletTransaction {
	return models.WalletTransaction{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Wallet:       kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Reason:       reason,
		Reference:    uuid.NewString(),
		CreatedAt:    now,
	}
}

// Apply increments (or, for negative amounts, debits) the given wallet and
// writes the journal row, returning the new balance. A mutation that would
// leave the wallet negative returns an error so the surrounding transaction
// rolls back; balances are never clamped.
func (ws *WalletService) Apply(ctx context.Context, userID primitive.ObjectID, kind models.WalletKind, amount float64, reason string) (float64, error) {
	field, err := walletField(kind)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	user, err := ws.store.applyDelta(ctx, userID, field, amount, now)
	if err != nil {
		return 0, err
	}

	newBalance := user.WalletBalance(kind)
	if newBalance < 0 {
		return 0, fmt.Errorf("wallet settlement: %s wallet of user %s would go negative", kind, userID.Hex())
	}

	if err := ws.store.insertJournal(ctx, journalEntry(userID, kind, amount, newBalance, reason, now)); err != nil {
		return 0, err
	}

	return newBalance, nil
}

type mongoWalletStore struct {
	db *mongo.Database
}

func (s *mongoWalletStore) applyDelta(ctx context.Context, userID primitive.ObjectID, field string, amount float64, now time.Time) (*models.User, error) {
	var user models.User
	err := s.db.Collection("users").FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		walletUpdate(field, amount, now),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("wallet settlement: user %s not found", userID.Hex())
		}
		return nil, err
	}
	return &user, nil
}

func (s *mongoWalletStore) insertJournal(ctx context.Context, entry models.WalletTransaction) error {
	_, err := s.db.Collection("wallet_transactions").InsertOne(ctx, entry)
	return err
}
