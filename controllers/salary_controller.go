// controllers/salary_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jabezinu/foxriver-backend/middleware"
	"github.com/jabezinu/foxriver-backend/models"
	"github.com/jabezinu/foxriver-backend/repositories"
	"github.com/jabezinu/foxriver-backend/services"
)

type SalaryController struct {
	db       *mongo.Database
	users    *repositories.UserRepository
	salaries *services.SalaryService
}

func NewSalaryController(db *mongo.Database, users *repositories.UserRepository, salaries *services.SalaryService) *SalaryController {
	return &SalaryController{db: db, users: users, salaries: salaries}
}

// GetSalaryPreview returns the current user's salary calculation without
// paying anything.
func (sc *SalaryController) GetSalaryPreview(c echo.Context) error {
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

	result, err := sc.salaries.CalculateMonthlySalary(ctx, objID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to calculate salary",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Salary calculated successfully",
		Data:    result,
	})
}

// GetSalaryHistory lists the current user's salary ledger rows.
func (sc *SalaryController) GetSalaryHistory(c echo.Context) error {
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

	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	cursor, err := sc.db.Collection("salary_records").Find(ctx, bson.M{"userId": objID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch salary history",
		})
	}
	defer cursor.Close(ctx)

	var records []models.SalaryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode salary history",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Salary history fetched successfully",
		Data:    records,
	})
}

// ProcessUserSalary runs the monthly payout for one user (admin)
func (sc *SalaryController) ProcessUserSalary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	user, err := sc.users.FindByID(ctx, objID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	record, err := sc.salaries.ProcessSalaryForUser(ctx, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Salary processing failed",
			Data:    err.Error(),
		})
	}
	if record == nil {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No salary due: already paid this month or no qualifying downline",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Salary paid successfully",
		Data:    record,
	})
}

// ProcessAllSalaries runs the monthly payout for every active user (admin)
func (sc *SalaryController) ProcessAllSalaries(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	paid, failed, err := sc.salaries.ProcessAllSalaries(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Salary run failed",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Salary run completed",
		Data: bson.M{
			"paid":   paid,
			"failed": failed,
		},
	})
}
