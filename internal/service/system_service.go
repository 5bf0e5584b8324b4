package service

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/ndewijer/Investment-Planner-Backend/internal/database"
	"github.com/ndewijer/Investment-Planner-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// VersionInfo describes the running build and the state of its schema.
type VersionInfo struct {
	AppVersion      string
	DbVersion       string
	MigrationNeeded bool
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion returns the build version and the applied schema version.
func (s *SystemService) CheckVersion(ctx context.Context) (VersionInfo, error) {
	dbVersion, pending, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return VersionInfo{}, err
	}
	return VersionInfo{
		AppVersion:      version.Version,
		DbVersion:       strconv.FormatInt(dbVersion, 10),
		MigrationNeeded: pending,
	}, nil
}
