package services

import (
	"context"

	"github.com/ibuc/dracmas-service/pkg/pg"
)

// HealthService answers liveness probes. With a DB handle attached it
// doubles as a readiness check against the read connection.
type HealthService struct {
	db *pg.DB
}

func NewHealthService(db *pg.DB) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) Get() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.Read(context.Background()).DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
