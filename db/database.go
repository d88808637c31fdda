package db

import (
	"fmt"
	"net/url"

	"probation_app_go/models"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Options selects and tunes the database backend.
// A non-empty TursoURL takes precedence over Path.
type Options struct {
	Path        string
	TursoURL    string
	TursoToken  string
	Environment string
}

// Initialize opens the database described by opts and stores it in DB
func Initialize(opts Options) error {
	gormCfg := &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel(opts.Environment)),
		NowFunc: models.NowUTC,
	}

	var dialector gorm.Dialector
	if opts.TursoURL != "" {
		dsn, err := tursoDSN(opts.TursoURL, opts.TursoToken)
		if err != nil {
			return err
		}
		dialector = sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn})
	} else {
		// WAL mode for concurrent readers, foreign keys for the protective guards
		dialector = sqlite.Open(opts.Path + "?_journal_mode=WAL&_foreign_keys=on")
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = conn

	if opts.TursoURL != "" {
		zap.L().Info("database connection established", zap.String("backend", "turso"))
	} else {
		zap.L().Info("database connection established", zap.String("backend", "sqlite"), zap.String("path", opts.Path))
	}
	return nil
}

func logLevel(environment string) logger.LogLevel {
	if environment == "production" {
		return logger.Warn
	}
	return logger.Info
}

func tursoDSN(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid TURSO_DATABASE_URL: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("authToken", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("database migrations completed", zap.Int("models", len(models)))
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
