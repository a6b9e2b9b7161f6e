// controllers/membership_controller.go
package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jabezinu/foxriver-backend/middleware"
	"github.com/jabezinu/foxriver-backend/models"
	"github.com/jabezinu/foxriver-backend/repositories"
	"github.com/jabezinu/foxriver-backend/services"
)

const tierCacheKey = "membership:tiers"

type MembershipController struct {
	db          *mongo.Database
	redis       *redis.Client
	users       *repositories.UserRepository
	memberships *services.MembershipService
	wallets     *services.WalletService
	commissions *services.CommissionService
}

func NewMembershipController(db *mongo.Database, redisClient *redis.Client, users *repositories.UserRepository, memberships *services.MembershipService, wallets *services.WalletService, commissions *services.CommissionService) *MembershipController {
	return &MembershipController{
		db:          db,
		redis:       redisClient,
		users:       users,
		memberships: memberships,
		wallets:     wallets,
		commissions: commissions,
	}
}

// GetMembershipTiers lists the visible tiers, served from the Redis cache
// when available.
func (mc *MembershipController) GetMembershipTiers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mc.redis != nil {
		if cached, err := mc.redis.Get(ctx, tierCacheKey).Result(); err == nil {
			var tiers []models.MembershipTier
			if err := json.Unmarshal([]byte(cached), &tiers); err == nil {
				return c.JSON(http.StatusOK, models.Response{
					Status:  http.StatusOK,
					Message: "Membership tiers fetched successfully",
					Data:    tiers,
				})
			}
		}
	}

	tiers, err := mc.memberships.VisibleTiers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch membership tiers",
		})
	}

	if mc.redis != nil {
		if payload, err := json.Marshal(tiers); err == nil {
			mc.redis.Set(ctx, tierCacheKey, payload, 5*time.Minute)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Membership tiers fetched successfully",
		Data:    tiers,
	})
}

// UpgradeMembership purchases a higher tier from the personal wallet and
// distributes the membership commissions.
func (mc *MembershipController) UpgradeMembership(c echo.Context) error {
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

	var req models.UpgradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
			Data:    err.Error(),
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	user, err := mc.users.FindByID(ctx, objID)
	if err != nil || user == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	tier, err := mc.memberships.TierByLevel(ctx, req.Level)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	current, err := mc.memberships.TierByLevel(ctx, user.MembershipLevel)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: err.Error(),
		})
	}

	if tier.Hidden || tier.Price <= 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "This membership level is not purchasable",
		})
	}
	if tier.Ordinal <= current.Ordinal {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Requested level is not an upgrade",
		})
	}

	now := time.Now()
	session, err := mc.db.Client().StartSession()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to start transaction",
		})
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := mc.wallets.Apply(sc, objID, models.WalletPersonal, -tier.Price, "upgrade"); err != nil {
			return nil, err
		}
		_, err := mc.db.Collection("users").UpdateOne(sc,
			bson.M{"_id": objID},
			bson.M{"$set": bson.M{
				"membershipLevel":       tier.Level,
				"membershipActivatedAt": now,
				"updatedAt":             now,
			}},
		)
		return nil, err
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Upgrade failed: insufficient personal wallet balance",
			Data:    err.Error(),
		})
	}

	// A level change invalidates the cached team summaries of the upline.
	mc.invalidateUplineTeamCache(ctx, user)

	user.MembershipLevel = tier.Level
	user.MembershipActivatedAt = &now
	commissions, err := mc.commissions.CalculateAndCreateMembershipCommissions(ctx, user, tier)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Upgrade succeeded but commission distribution failed",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Membership upgraded successfully",
		Data: bson.M{
			"level":       tier.Level,
			"commissions": commissions,
		},
	})
}

func (mc *MembershipController) invalidateUplineTeamCache(ctx context.Context, user *models.User) {
	if mc.redis == nil {
		return
	}
	current := user
	for hops := 0; hops < 3 && current.ReferrerID != nil; hops++ {
		ancestor, err := mc.users.FindByID(ctx, *current.ReferrerID)
		if err != nil || ancestor == nil {
			return
		}
		if err := mc.redis.Del(ctx, teamCacheKey(ancestor.ID)).Err(); err != nil {
			log.Printf("Failed to invalidate team cache for %s: %v", ancestor.ID.Hex(), err)
		}
		current = ancestor
	}
}

// UpdateMembershipTier applies an admin price/visibility edit and drops the
// tier cache so the change is visible immediately.
func (mc *MembershipController) UpdateMembershipTier(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.UpdateTierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
			Data:    err.Error(),
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	tier, err := mc.memberships.UpdateTier(ctx, c.Param("level"), &req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if mc.redis != nil {
		mc.redis.Del(ctx, tierCacheKey)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Membership tier updated successfully",
		Data:    tier,
	})
}
