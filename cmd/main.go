package main

import (
	"GoodDental/cache"
	"GoodDental/config"
	"GoodDental/database"
	"GoodDental/events"
	"GoodDental/jobs"
	"GoodDental/models"
	"GoodDental/repositories"
	"GoodDental/routes"
	"GoodDental/services"
	"GoodDental/storage"
	"GoodDental/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "gooddental",
		Short:        "Good Dental clinic administration API",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return runServer(cfg, logger)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed the first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := openDB(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := seed(ctx, db, cfg); err != nil {
				return err
			}
			logger.Info().Msg("database migrated")
			return flushCaches(ctx, cfg, logger)
		},
	}
}

// setup loads the configuration and builds the root logger.
func setup() (*config.AppConfig, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout)
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Str("service", "gooddental").Logger()
}

func openDB(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := database.InitDB(ctx, cfg.DBURL, database.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}, cfg.IsDev(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB, cfg *config.AppConfig) error {
	return database.SeedInitialData(ctx, db, database.Seed{
		ClinicName:    cfg.ClinicName,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}, utils.HashPassword)
}

// flushCaches drops every cached collection so no row of the old schema is
// served after a migration.
func flushCaches(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) error {
	client, err := newRedisClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	c, err := cache.NewCache(client)
	if err != nil {
		return err
	}
	if err := c.DeleteAll(ctx, "*_cache*"); err != nil {
		return fmt.Errorf("failed to flush caches: %w", err)
	}
	logger.Info().Msg("caches flushed")
	return nil
}

func newRedisClient(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (*redis.Client, error) {
	client, err := database.NewRedisClient(ctx, database.RedisConfig{
		URL:          cfg.RedisURL,
		PoolSize:     cfg.RedisPoolSize,
		DialTimeout:  cfg.RedisDialTimeout,
		MinIdleConns: cfg.RedisMinIdleConns,
		ReadTimeout:  cfg.RedisReadTimeout,
		MaxRetries:   cfg.RedisMaxRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	return client, nil
}

func runServer(cfg *config.AppConfig, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := seed(ctx, db, cfg); err != nil {
		return err
	}

	redisClient, err := newRedisClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	redisCache, err := cache.NewCache(redisClient)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaEnabled() {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing change events")
	}
	defer publisher.Close()

	backends, err := newBackends(db, redisCache, publisher, logger)
	if err != nil {
		return err
	}
	stores := services.NewStores(backends, logger)
	stores.LoadAll(ctx)

	tokens, err := utils.NewTokenMaker(cfg.SymmetricKey)
	if err != nil {
		return err
	}

	// interfaces are only set when configured, so nil checks in the
	// services see a true nil
	var (
		resetMailer  services.ResetMailer
		reportMailer services.Mailer
		archive      storage.Archive
	)
	if cfg.MailEnabled() {
		mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		resetMailer, reportMailer = mailer, mailer
	}
	if cfg.ReportsBucket != "" {
		s3Archive, err := storage.NewS3Archive(ctx, cfg.ReportsBucket)
		if err != nil {
			return err
		}
		archive = s3Archive
	}

	reports := services.NewReportService(stores, archive, reportMailer, cfg.ReportRecipients, logger)
	svc := routes.Services{
		Stores:    stores,
		Auth:      services.NewAuthService(stores.Employees, backends.Employees, tokens, utils.NewResetCodes(redisCache), resetMailer, logger),
		Patients:  services.NewPatientService(stores.Patients, backends.MedicalRecords),
		Dentogram: services.NewDentogramService(backends.Dentograms, stores.Patients, logger),
		POS:       services.NewPOSService(stores, logger),
		Cash:      services.NewCashService(stores),
		Reports:   reports,
	}

	scheduler, err := startJobs(cfg, reports, svc.Dentogram, redisClient, logger)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        routes.SetupRoutes(cfg, logger, svc),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	serveErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	logger.Info().Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	wg.Wait()
	logger.Info().Msg("server exited gracefully")
	return nil
}

// newBackends builds one repository per collection.
func newBackends(db *gorm.DB, c repositories.Cache, publisher events.Publisher, logger zerolog.Logger) (services.Backends, error) {
	var (
		b   services.Backends
		err error
	)
	if b.Patients, err = repositories.NewRepository[models.Patient](db, c, publisher, logger, repositories.Options{}); err != nil {
		return b, err
	}
	// the hash never travels in JSON, so full updates must not clear it
	if b.Employees, err = repositories.NewRepository[models.Employee](db, c, publisher, logger, repositories.Options{OmitOnUpdate: []string{"password_hash"}}); err != nil {
		return b, err
	}
	if b.MedicalRecords, err = repositories.NewRepository[models.MedicalRecord](db, c, publisher, logger, repositories.Options{}); err != nil {
		return b, err
	}
	if b.Enterprise, err = repositories.NewRepository[models.EnterpriseInfo](db, c, publisher, logger, repositories.Options{}); err != nil {
		return b, err
	}
	if b.Products, err = repositories.NewRepository[models.Product](db, c, publisher, logger, repositories.Options{}); err != nil {
		return b, err
	}
	if b.Sales, err = repositories.NewRepository[models.Sale](db, c, publisher, logger, repositories.Options{}); err != nil {
		return b, err
	}
	if b.CashClosings, err = repositories.NewRepository[models.CashClosing](db, c, publisher, logger, repositories.Options{}); err != nil {
		return b, err
	}
	b.Dentograms = repositories.NewDentogramRepository(db, c, publisher, logger)
	return b, nil
}

func startJobs(cfg *config.AppConfig, reports *services.ReportService, charts *services.DentogramService, redisClient *redis.Client, logger zerolog.Logger) (*jobs.Scheduler, error) {
	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.ScheduleDailyReport(cfg.ReportSchedule, reports); err != nil {
		return nil, err
	}
	if err := scheduler.ScheduleEvery("redis-pool-stats", time.Hour, func() {
		database.MonitorRedisPool(redisClient, logger)
	}); err != nil {
		return nil, err
	}
	if err := scheduler.ScheduleEvery("dentogram-idle-sweep", 15*time.Minute, func() {
		if n := charts.SweepIdle(); n > 0 {
			logger.Info().Int("sessions", n).Msg("idle dentogram sessions dropped")
		}
	}); err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}
