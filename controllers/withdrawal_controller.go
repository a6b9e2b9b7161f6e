// controllers/withdrawal_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/jabezinu/foxriver-backend/middleware"
	"github.com/jabezinu/foxriver-backend/models"
	"github.com/jabezinu/foxriver-backend/repositories"
	"github.com/jabezinu/foxriver-backend/services"
)

type WithdrawalController struct {
	db          *mongo.Database
	users       *repositories.UserRepository
	memberships *services.MembershipService
	wallets     *services.WalletService
}

func NewWithdrawalController(db *mongo.Database, users *repositories.UserRepository, memberships *services.MembershipService, wallets *services.WalletService) *WithdrawalController {
	return &WithdrawalController{db: db, users: users, memberships: memberships, wallets: wallets}
}

// RequestWithdrawal debits the chosen wallet and opens a pending withdrawal.
// Interns cannot withdraw; tiers that require a transaction password must
// present it.
func (wc *WithdrawalController) RequestWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	var req models.WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	user, err := wc.users.FindByID(ctx, objID)
	if err != nil || user == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	tier, err := wc.memberships.TierByLevel(ctx, user.MembershipLevel)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to resolve membership tier",
		})
	}
	if !tier.CanWithdraw {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Your membership level does not allow withdrawals",
		})
	}

	if tier.CanUseTransactionPassword {
		if user.TransactionPassword == "" {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Set a transaction password before withdrawing",
			})
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.TransactionPassword), []byte(req.TransactionPassword)); err != nil {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Incorrect transaction password",
			})
		}
	}

	withdrawal := models.Withdrawal{
		ID:        primitive.NewObjectID(),
		UserID:    objID,
		Wallet:    req.Wallet,
		Amount:    req.Amount,
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	session, err := wc.db.Client().StartSession()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to start transaction",
		})
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := wc.wallets.Apply(sessCtx, objID, req.Wallet, -req.Amount, "withdrawal"); err != nil {
			return nil, err
		}
		if _, err := wc.db.Collection("withdrawals").InsertOne(sessCtx, withdrawal); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("Withdrawal request failed for %s: %v", objID.Hex(), err)
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Withdrawal failed",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal requested successfully",
		Data:    withdrawal,
	})
}

// GetMyWithdrawals lists the user's withdrawal requests, newest first.
func (wc *WithdrawalController) GetMyWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := wc.db.Collection("withdrawals").Find(ctx, bson.M{"userId": objID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawals",
		})
	}
	defer cursor.Close(ctx)

	var withdrawals []models.Withdrawal
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode withdrawals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals fetched successfully",
		Data:    withdrawals,
	})
}

// DecideWithdrawal approves or rejects a pending withdrawal (admin). A
// rejection refunds the held amount back to the original wallet.
func (wc *WithdrawalController) DecideWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID format",
		})
	}

	adminID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}
	adminObjID, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	var req models.WithdrawalDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	session, err := wc.db.Client().StartSession()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to start transaction",
		})
	}
	defer session.EndSession(ctx)

	var updated models.Withdrawal
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		// Claim the pending row first so a decision cannot be applied twice.
		res := wc.db.Collection("withdrawals").FindOneAndUpdate(sessCtx,
			bson.M{"_id": withdrawalID, "status": "pending"},
			bson.M{"$set": bson.M{
				"status":          req.Status,
				"processedAt":     now,
				"adminId":         adminObjID,
				"adminNote":       req.AdminNote,
				"rejectionReason": req.RejectionReason,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		if err := res.Decode(&updated); err != nil {
			return nil, err
		}
		if req.Status == "rejected" {
			if _, err := wc.wallets.Apply(sessCtx, updated.UserID, updated.Wallet, updated.Amount, "withdrawal_refund"); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Pending withdrawal not found",
			})
		}
		log.Printf("Withdrawal decision failed for %s: %v", withdrawalID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process decision",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal " + req.Status,
		Data:    updated,
	})
}
