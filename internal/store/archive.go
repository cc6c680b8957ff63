// internal/store/archive.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"tdlr-processor/internal/common/config"
	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/models"
)

// Archive keeps a queryable row per persisted result in PostgreSQL. It is an
// optional collaborator behind the file sink; archive failures degrade the
// run's durability, not its outcome.
type Archive struct {
	db     *sql.DB
	logger logger.Logger
}

func NewArchive(cfg config.PostgresConfig, log logger.Logger) (*Archive, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewArchiveWithDB(db, log), nil
}

// NewArchiveWithDB wraps an existing connection (tests use sqlmock here).
func NewArchiveWithDB(db *sql.DB, log logger.Logger) *Archive {
	return &Archive{
		db: db,
		logger: log.With(map[string]interface{}{
			"component": "archive",
		}),
	}
}

const insertResultQuery = `
	INSERT INTO processing_results (application_id, license_type, processing_date, location, record)
	VALUES ($1, $2, $3, $4, $5)`

// Insert archives one processing result together with its file location.
func (a *Archive) Insert(ctx context.Context, result *models.ProcessingResult, location string) error {
	record, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = a.db.ExecContext(ctx, insertResultQuery,
		result.ApplicationID,
		result.LicenseType,
		result.ProcessingDate,
		location,
		record,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	a.logger.Debug("result archived", map[string]interface{}{
		"applicationId": result.ApplicationID,
	})
	return nil
}

// Ping tests the database connection
func (a *Archive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the database connection
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
