package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/repositories/uploads"
)

var ErrJournalDisabled = errors.New("upload journal is disabled")

// StatusService reports on the client's environment.
//
// Contract:
//   - Ping: check that the persistence API is reachable.
//   - CheckSession: fail fast when the configured token has expired.
//   - Orphans: list uploads whose submission attempt never persisted a task.
type StatusService interface {
	Ping(ctx context.Context) error
	CheckSession() error
	Orphans(ctx context.Context) ([]uploads.Record, error)
}

type statusService struct {
	client  client.Client
	journal uploads.Repository
}

// NewStatusService constructs a StatusService. journal may be nil.
func NewStatusService(client client.Client, journal uploads.Repository) StatusService {
	return &statusService{client: client, journal: journal}
}

// Ping proxies a liveness check to the underlying client.
func (s *statusService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *statusService) CheckSession() error {
	return s.client.CheckToken()
}

func (s *statusService) Orphans(ctx context.Context) ([]uploads.Record, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	recs, err := s.journal.ListOrphaned(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orphaned uploads: %w", err)
	}
	return recs, nil
}
