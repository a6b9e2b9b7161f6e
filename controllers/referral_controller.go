// controllers/referral_controller.go
package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
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
	"github.com/jabezinu/foxriver-backend/utils"
)

func teamCacheKey(id primitive.ObjectID) string {
	return "team:" + id.Hex()
}

type ReferralController struct {
	db          *mongo.Database
	redis       *redis.Client
	users       *repositories.UserRepository
	commissions *services.CommissionService
}

func NewReferralController(db *mongo.Database, redisClient *redis.Client, users *repositories.UserRepository, commissions *services.CommissionService) *ReferralController {
	return &ReferralController{db: db, redis: redisClient, users: users, commissions: commissions}
}

// GetReferralData returns the user's referral code, generating one on first
// access, along with the direct referral count and a shareable link.
func (rc *ReferralController) GetReferralData(c echo.Context) error {
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

	user, err := rc.users.FindByID(ctx, objID)
	if err != nil || user == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	code := user.ReferralCode
	if code == "" {
		// Retry on the unique index in the unlikely event of a collision
		for attempt := 0; attempt < 3; attempt++ {
			candidate, err := utils.GenerateReferralCode()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to generate referral code",
				})
			}
			_, err = rc.db.Collection("users").UpdateOne(ctx,
				bson.M{"_id": objID},
				bson.M{"$set": bson.M{"referralCode": candidate, "updatedAt": time.Now()}},
			)
			if err == nil {
				code = candidate
				break
			}
			if !mongo.IsDuplicateKeyError(err) {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to save referral code",
				})
			}
		}
		if code == "" {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to allocate referral code",
			})
		}
	}

	count, err := rc.users.CountDirectReferrals(ctx, objID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count referrals",
		})
	}

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "https://foxriver.app"
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral data fetched successfully",
		Data: models.ReferralData{
			ReferralCode:  code,
			ReferralCount: int(count),
			ReferralLink:  baseURL + "/register?ref=" + code,
		},
	})
}

// GetTeamSummary returns downline headcounts for the three referral levels.
// Counts are cached in Redis and invalidated when a downline member upgrades.
func (rc *ReferralController) GetTeamSummary(c echo.Context) error {
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

	cacheKey := teamCacheKey(objID)
	if rc.redis != nil {
		if cached, err := rc.redis.Get(ctx, cacheKey).Result(); err == nil {
			var summary models.TeamSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return c.JSON(http.StatusOK, models.Response{
					Status:  http.StatusOK,
					Message: "Team summary fetched successfully",
					Data:    summary,
				})
			}
		}
	}

	summary, err := rc.buildTeamSummary(ctx, objID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to build team summary",
		})
	}

	if rc.redis != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := rc.redis.Set(ctx, cacheKey, payload, 10*time.Minute).Err(); err != nil {
				log.Printf("Failed to cache team summary for %s: %v", objID.Hex(), err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Team summary fetched successfully",
		Data:    summary,
	})
}

func (rc *ReferralController) buildTeamSummary(ctx context.Context, rootID primitive.ObjectID) (models.TeamSummary, error) {
	var summary models.TeamSummary
	frontier := []primitive.ObjectID{rootID}
	counts := []*int{&summary.ALevel, &summary.BLevel, &summary.CLevel}

	for _, bucket := range counts {
		if len(frontier) == 0 {
			break
		}
		members, err := rc.users.FindByReferrers(ctx, frontier)
		if err != nil {
			return models.TeamSummary{}, err
		}
		*bucket = len(members)
		frontier = frontier[:0]
		for _, m := range members {
			frontier = append(frontier, m.ID)
		}
	}

	summary.Total = summary.ALevel + summary.BLevel + summary.CLevel
	return summary, nil
}

// GetMyCommissions lists the user's most recent commission earnings.
func (rc *ReferralController) GetMyCommissions(c echo.Context) error {
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

	records, err := rc.commissions.ListForBeneficiary(ctx, objID, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch commissions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commissions fetched successfully",
		Data:    records,
	})
}
