package routes

import (
	"GoodDental/config"
	"GoodDental/controllers"
	"GoodDental/handlers"
	"GoodDental/middlewares"
	"GoodDental/models"
	"GoodDental/services"
	"GoodDental/utils"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Services are the application services the HTTP layer is built on.
type Services struct {
	Stores    *services.Stores
	Auth      *services.AuthService
	Patients  *services.PatientService
	Dentogram *services.DentogramService
	POS       *services.POSService
	Cash      *services.CashService
	Reports   *services.ReportService
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cfg *config.AppConfig, logger zerolog.Logger, svc Services) http.Handler {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middlewares.LoggingMiddleware(logger),
		middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(cfg.CORSOrigins)),
		middlewares.SecurityHeaders(),
		middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{".xlsx"})),
	)

	s := svc.Stores
	authHandler := handlers.NewAuthHandler(svc.Auth)
	reportHandler := handlers.NewReportHandler(svc.Reports, s)

	tokenAuth := middlewares.TokenAuthMiddleware(svc.Auth)
	api := router.Group("/api", tokenAuth)

	controllers.SetupRootRoute(router, api, s)
	controllers.NewAuthController(authHandler).RegisterRoutes(router, tokenAuth)

	controllers.SetupPatientRoutes(api, controllers.ClinicHandlers{
		Patients:       handlers.NewEntityHandler[models.Patient, *models.Patient]("patient", s.Patients, utils.ValidatePatient),
		MedicalRecords: handlers.NewEntityHandler[models.MedicalRecord, *models.MedicalRecord]("medical record", s.MedicalRecords, utils.ValidateMedicalRecord),
		Patient:        handlers.NewPatientHandler(svc.Patients),
		Dentogram:      handlers.NewDentogramHandler(svc.Dentogram),
	})

	controllers.SetupSalesRoutes(api, controllers.SalesHandlers{
		Products:     handlers.NewEntityHandler[models.Product, *models.Product]("product", s.Products, utils.ValidateProduct),
		Sales:        handlers.NewEntityHandler[models.Sale, *models.Sale]("sale", s.Sales, nil),
		CashClosings: handlers.NewEntityHandler[models.CashClosing, *models.CashClosing]("cash closing", s.CashClosings, nil),
		POS:          handlers.NewPOSHandler(svc.POS),
		Cash:         handlers.NewCashHandler(svc.Cash),
	})

	controllers.SetupAdminRoutes(api, controllers.AdminHandlers{
		Employees:  handlers.NewEntityHandler[models.Employee, *models.Employee]("employee", s.Employees, utils.ValidateEmployee),
		Enterprise: handlers.NewEntityHandler[models.EnterpriseInfo, *models.EnterpriseInfo]("clinic settings", s.Enterprise, utils.ValidateEnterpriseInfo),
		Auth:       authHandler,
		Reports:    reportHandler,
	})

	if token := cfg.GetBearerToken(); token != "" {
		controllers.SetupInternalRoutes(router, token, reportHandler)
	}

	return router
}
