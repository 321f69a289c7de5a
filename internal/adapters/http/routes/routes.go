package routes

import (
	"schoolhub/internal/adapters/http/handlers"
	"schoolhub/internal/adapters/http/middleware"
	"schoolhub/internal/adapters/persistence/repositories"
	"schoolhub/internal/config"
	"schoolhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the
// cron service so the caller owns its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CronService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Library repositories
	bookRepo := repositories.NewBookRepository(db)
	copyRepo := repositories.NewBookCopyRepository(db)
	memberRepo := repositories.NewLibraryMemberRepository(db)
	txRepo := repositories.NewBorrowingTransactionRepository(db)
	fineRepo := repositories.NewFineRepository(db)

	// Fee & admission repositories
	paymentRepo := repositories.NewFeePaymentRepository(db)
	admissionRepo := repositories.NewAdmissionRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService()
	authService := services.NewAuthService(userRepo, profileRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, profileRepo)
	libraryService := services.NewLibraryService(memberRepo, txRepo, fineRepo, copyRepo, profileRepo)
	catalogService := services.NewCatalogService(bookRepo, copyRepo, txRepo, profileRepo)
	feeService := services.NewFeeService(paymentRepo, profileRepo, notifyService)
	admissionService := services.NewAdmissionService(admissionRepo, profileRepo, userService, notifyService)
	dashboardService := services.NewDashboardService(db, profileRepo, fineRepo, paymentRepo, admissionRepo)
	cronService := services.NewCronService(libraryService, authService, notifyService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	libraryHandler := handlers.NewLibraryHandler(libraryService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	feeHandler := handlers.NewFeeHandler(feeService)
	admissionHandler := handlers.NewAdmissionHandler(admissionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	mobileHandler := handlers.NewMobileHandler(dashboardService, libraryService, feeService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, libraryHandler,
		catalogHandler, feeHandler, admissionHandler, dashboardHandler, cfg)

	// API v2 group (Mobile-optimized)
	apiV2 := app.Group("/api/v2")
	setupAPIV2Routes(apiV2, mobileHandler, cfg)

	return cronService
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	libraryHandler *handlers.LibraryHandler,
	catalogHandler *handlers.CatalogHandler,
	feeHandler *handlers.FeeHandler,
	admissionHandler *handlers.AdmissionHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Public admission application (rate limited)
	router.Post("/admissions/apply", middleware.PublicFormRateLimiter(), admissionHandler.Apply)

	// Profile routes (authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Put("/", userHandler.UpdateProfile)

	// Admin routes (admin and sub-admin)
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.StaffOnly())
	setupAdminRoutes(adminRoutes, userHandler, libraryHandler, catalogHandler,
		feeHandler, admissionHandler, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupAdminRoutes configures the admin dashboard surface
func setupAdminRoutes(
	router fiber.Router,
	userHandler *handlers.UserHandler,
	libraryHandler *handlers.LibraryHandler,
	catalogHandler *handlers.CatalogHandler,
	feeHandler *handlers.FeeHandler,
	admissionHandler *handlers.AdmissionHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	// Dashboard
	router.Get("/dashboard", dashboardHandler.GetAdminDashboard)

	// User provisioning (admin only)
	router.Post("/users", middleware.AdminOnly(), userHandler.CreateUser)
	router.Patch("/users/:id/active", middleware.AdminOnly(), userHandler.SetUserActive)

	// People
	router.Get("/teachers", userHandler.ListTeachers)
	router.Post("/teachers", middleware.AdminOnly(), userHandler.CreateTeacher)
	router.Get("/teachers/:id", userHandler.GetTeacher)
	router.Get("/students", userHandler.ListStudents)

	// Library: catalog
	router.Get("/library/books", middleware.CatalogCache(), catalogHandler.ListBooks)
	router.Post("/library/books", catalogHandler.CreateBook)
	router.Get("/library/books/:id", catalogHandler.GetBook)
	router.Put("/library/books/:id", catalogHandler.UpdateBook)
	router.Delete("/library/books/:id", catalogHandler.DeleteBook)
	router.Post("/library/books/:id/copies", catalogHandler.AddCopy)
	router.Patch("/library/copies/:id/damaged", catalogHandler.MarkCopyDamaged)

	// Library: members
	router.Get("/library/members", libraryHandler.ListMembers)
	router.Post("/library/members", libraryHandler.CreateMember)

	// Library: circulation
	router.Get("/library/transactions", libraryHandler.ListTransactions)
	router.Post("/library/transactions/checkout", libraryHandler.Checkout)
	router.Post("/library/transactions/:id/return", libraryHandler.Return)

	// Fees
	router.Get("/fees/payments", feeHandler.ListPayments)
	router.Post("/fees/payments", feeHandler.RecordPayment)
	router.Post("/fees/payments/:id/verify", feeHandler.VerifyPayment)

	// Admissions
	router.Get("/admissions", admissionHandler.ListApplications)
	router.Post("/admissions/:id/approve", admissionHandler.Approve)
	router.Post("/admissions/:id/reject", admissionHandler.Reject)
}

// setupAPIV2Routes configures API v2 routes (mobile-optimized)
func setupAPIV2Routes(router fiber.Router, mobileHandler *handlers.MobileHandler, cfg *config.Config) {
	mobileRoutes := router.Group("/mobile")
	mobileRoutes.Use(middleware.AuthMiddleware(cfg))

	// GET /api/v2/mobile/dashboard
	mobileRoutes.Get("/dashboard", mobileHandler.GetDashboard)

	// GET /api/v2/mobile/my-loans
	mobileRoutes.Get("/my-loans", mobileHandler.GetMyLoans)

	// GET /api/v2/mobile/my-fines
	mobileRoutes.Get("/my-fines", mobileHandler.GetMyFines)

	// GET /api/v2/mobile/my-fees
	mobileRoutes.Get("/my-fees", mobileHandler.GetMyFees)
}
