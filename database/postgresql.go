package database

import (
	"GoodDental/models"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig sizes the sql.DB connection pool.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
}

// InitDB opens the database connection, configures the pool and checks the
// connection. It does not migrate.
func InitDB(ctx context.Context, dsn string, pool PoolConfig, dev bool, log zerolog.Logger) (*gorm.DB, error) {
	logMode := logger.Silent
	if dev {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: false,
		PrepareStmt:                              true,
		Logger:                                   logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if err := configureConnectionPool(db, pool); err != nil {
		return nil, err
	}
	if err := testDatabaseConnection(ctx, db); err != nil {
		return nil, err
	}

	log.Info().Msg("database initialized")
	return db, nil
}

func configureConnectionPool(db *gorm.DB, pool PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

func testDatabaseConnection(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	return nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Patient{},
		&models.Employee{},
		&models.MedicalRecord{},
		&models.EnterpriseInfo{},
		&models.Product{},
		&models.Sale{},
		&models.CashClosing{},
		&models.DentogramDocument{},
	)
	return errors.Wrap(err, "failed to run migrations")
}

// Seed is the data a fresh installation needs before anyone can log in.
type Seed struct {
	ClinicName    string
	AdminEmail    string
	AdminPassword string
}

// SeedInitialData creates the clinic settings row and the first admin when
// their tables are empty.
func SeedInitialData(ctx context.Context, db *gorm.DB, seed Seed, hash func(string) (string, error)) error {
	now := time.Now().UnixMilli()

	var count int64
	if err := db.WithContext(ctx).Model(&models.EnterpriseInfo{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count enterprise info")
	}
	if count == 0 {
		info := models.EnterpriseInfo{
			Base:     models.Base{ID: newID(), CreatedAt: now, UpdatedAt: now, IsActive: true},
			Name:     seed.ClinicName,
			Currency: "USD",
		}
		if err := db.WithContext(ctx).Create(&info).Error; err != nil {
			return errors.Wrap(err, "failed to seed enterprise info")
		}
	}

	if seed.AdminEmail == "" {
		return nil
	}
	if err := db.WithContext(ctx).Model(&models.Employee{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count admins")
	}
	if count > 0 {
		return nil
	}
	hashed, err := hash(seed.AdminPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash admin password")
	}
	admin := models.Employee{
		Base:         models.Base{ID: newID(), CreatedAt: now, UpdatedAt: now, IsActive: true},
		UserInfo:     models.UserInfo{Name: "Admin", LastName: "Admin", Email: strings.ToLower(strings.TrimSpace(seed.AdminEmail))},
		Role:         models.RoleAdmin,
		Position:     "Administrator",
		HireDate:     now,
		PasswordHash: hashed,
	}
	return errors.Wrap(db.WithContext(ctx).Create(&admin).Error, "failed to seed admin")
}

func newID() string {
	return uuid.New().String()
}
