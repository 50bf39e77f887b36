package database

import (
	"fmt"
	"log"

	"trxflow/config"
	"trxflow/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDb establishes the connection described by AppConfig and runs
// migrations.
func ConnectDb(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg.DBDriver, buildDSN(cfg))
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)   // Maximum open connections
	sqlDB.SetMaxIdleConns(5)    // Maximum idle connections
	sqlDB.SetConnMaxLifetime(0) // No timeout

	if err := RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	return db
}

// Open opens a gorm handle for the given driver. Driver errors are translated
// so unique violations surface as gorm.ErrDuplicatedKey.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Running Migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.LoginTracking{},
	); err != nil {
		return err
	}

	log.Println("Migrations completed successfully.")
	return nil
}

func buildDSN(cfg *config.Config) string {
	if cfg.DBDSN != "" {
		return cfg.DBDSN
	}

	switch cfg.DBDriver {
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
	case "sqlite":
		return cfg.DBName + ".db"
	default:
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
	}
}
