// controllers/task_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jabezinu/foxriver-backend/middleware"
	"github.com/jabezinu/foxriver-backend/models"
	"github.com/jabezinu/foxriver-backend/repositories"
	"github.com/jabezinu/foxriver-backend/services"
)

const dailyTaskLimit = 5

type TaskController struct {
	db          *mongo.Database
	users       *repositories.UserRepository
	memberships *services.MembershipService
	wallets     *services.WalletService
	commissions *services.CommissionService
}

func NewTaskController(db *mongo.Database, users *repositories.UserRepository, memberships *services.MembershipService, wallets *services.WalletService, commissions *services.CommissionService) *TaskController {
	return &TaskController{
		db:          db,
		users:       users,
		memberships: memberships,
		wallets:     wallets,
		commissions: commissions,
	}
}

// GetTasks lists the active video tasks
func (tc *TaskController) GetTasks(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := tc.db.Collection("tasks").Find(ctx, bson.M{"active": true})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch tasks",
		})
	}
	defer cursor.Close(ctx)

	var tasks []models.VideoTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode tasks",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Tasks fetched successfully",
		Data:    tasks,
	})
}

// CompleteTask confirms a task completion, pays the per-video income of the
// user's tier into the income wallet and distributes referral commissions.
func (tc *TaskController) CompleteTask(c echo.Context) error {
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

	taskID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid task ID format",
		})
	}

	user, err := tc.users.FindByID(ctx, objID)
	if err != nil || user == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	tier, err := tc.memberships.TierByLevel(ctx, user.MembershipLevel)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: err.Error(),
		})
	}
	if tier.PerVideoIncome <= 0 {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Upgrade your membership to earn from tasks",
		})
	}

	var task models.VideoTask
	err = tc.db.Collection("tasks").FindOne(ctx, bson.M{"_id": taskID, "active": true}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Task not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	// Daily task cap for the tier
	todayCount, err := tc.db.Collection("task_completions").CountDocuments(ctx, bson.M{
		"userId":    objID,
		"createdAt": bson.M{"$gte": startOfDay(time.Now())},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}
	if todayCount >= dailyTaskLimit {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Daily task limit reached",
		})
	}

	completion := models.TaskCompletion{
		ID:           primitive.NewObjectID(),
		UserID:       objID,
		TaskID:       taskID,
		AmountEarned: tier.PerVideoIncome,
		CreatedAt:    time.Now(),
	}

	session, err := tc.db.Client().StartSession()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to start transaction",
		})
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := tc.db.Collection("task_completions").InsertOne(sc, completion); err != nil {
			return nil, err
		}
		_, err := tc.wallets.Apply(sc, objID, models.WalletIncome, completion.AmountEarned, "task")
		return nil, err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Task already completed",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record task completion",
			Data:    err.Error(),
		})
	}

	commissions, err := tc.commissions.CalculateAndCreateCommissions(ctx, &completion, completion.AmountEarned)
	if err != nil {
		// The completion itself is already committed; surface the
		// commission failure so the caller can retry the distribution.
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Task completed but commission distribution failed",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Task completed successfully",
		Data: bson.M{
			"completion":  completion,
			"commissions": commissions,
		},
	})
}

// startOfDay returns midnight of now's calendar day in its own location.
// Truncating by 24h would give UTC midnight and shift the cap window by the
// zone offset.
func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// CreateTask adds a video task (admin)
func (tc *TaskController) CreateTask(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var task models.VideoTask
	if err := c.Bind(&task); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
			Data:    err.Error(),
		})
	}

	task.ID = primitive.NewObjectID()
	task.Active = true
	task.CreatedAt = time.Now()

	if _, err := tc.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create task",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Task created successfully",
		Data:    task,
	})
}
