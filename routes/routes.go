package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jabezinu/foxriver-backend/config"
	"github.com/jabezinu/foxriver-backend/controllers"
	"github.com/jabezinu/foxriver-backend/middleware"
	"github.com/jabezinu/foxriver-backend/repositories"
	"github.com/jabezinu/foxriver-backend/services"
)

// SetupRoutes wires repositories, services and controllers and registers
// every protected route group.
func SetupRoutes(e *echo.Echo, client *mongo.Client, redisClient *redis.Client) {
	db := client.Database(config.DatabaseName())

	users := repositories.NewUserRepository(db)
	wallets := services.NewWalletService(db)
	settings := services.NewSettingsService(db)
	memberships := services.NewMembershipService(db)
	commissions := services.NewCommissionService(db, users, settings, memberships, wallets)
	salaries := services.NewSalaryService(db, users, settings, memberships, wallets)

	userController := controllers.NewUserController(db, users)
	taskController := controllers.NewTaskController(db, users, memberships, wallets, commissions)
	membershipController := controllers.NewMembershipController(db, redisClient, users, memberships, wallets, commissions)
	referralController := controllers.NewReferralController(db, redisClient, users, commissions)
	salaryController := controllers.NewSalaryController(db, users, salaries)
	withdrawalController := controllers.NewWithdrawalController(db, users, memberships, wallets)
	settingsController := controllers.NewSettingsController(settings)

	// Protected routes group
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.ActivityTracker(client))

	// Profile and wallet routes
	r.GET("/users/profile", userController.GetProfile)
	r.POST("/users/transaction-password", userController.SetTransactionPassword)
	r.GET("/wallet/transactions", userController.GetWalletTransactions)

	// Task routes
	r.GET("/tasks", taskController.GetTasks)
	r.POST("/tasks/:id/complete", taskController.CompleteTask)

	// Membership routes
	r.GET("/memberships", membershipController.GetMembershipTiers)
	r.POST("/memberships/upgrade", membershipController.UpgradeMembership)

	// Referral and commission routes
	r.GET("/referrals/data", referralController.GetReferralData)
	r.GET("/referrals/team", referralController.GetTeamSummary)
	r.GET("/commissions", referralController.GetMyCommissions)

	// Salary routes
	r.GET("/salary/preview", salaryController.GetSalaryPreview)
	r.GET("/salary/history", salaryController.GetSalaryHistory)

	// Withdrawal routes
	r.POST("/withdrawals", withdrawalController.RequestWithdrawal)
	r.GET("/withdrawals", withdrawalController.GetMyWithdrawals)

	// Admin routes group
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType("admin"))

	admin.POST("/tasks", taskController.CreateTask)
	admin.PUT("/memberships/:level", membershipController.UpdateMembershipTier)
	admin.GET("/settings", settingsController.GetSettings)
	admin.PUT("/settings", settingsController.UpdateSettings)
	admin.POST("/salary/process/:userId", salaryController.ProcessUserSalary)
	admin.POST("/salary/process-all", salaryController.ProcessAllSalaries)
	admin.PUT("/withdrawals/:id", withdrawalController.DecideWithdrawal)
}
