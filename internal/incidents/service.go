// Package incidents provides HTTP handlers and business logic for the incident log.
package incidents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bissquit/incidentlog/internal/domain"
	"github.com/bissquit/incidentlog/internal/pkg/metrics"
)

// SampleIncidents returns the records inserted into an empty store on startup.
func SampleIncidents() []CreateIncidentInput {
	return []CreateIncidentInput{
		{Title: "Sample Incident 1", Description: "Description for sample 1", Severity: string(domain.SeverityLow)},
		{Title: "Sample Incident 2", Description: "Description for sample 2", Severity: string(domain.SeverityHigh)},
	}
}

// Service implements incident business logic.
type Service struct {
	repo Repository
}

// NewService creates a new incident service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListIncidents returns every stored incident.
func (s *Service) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	incidents, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	if incidents == nil {
		incidents = make([]domain.Incident, 0)
	}
	return incidents, nil
}

// CreateIncident validates input and persists a new incident.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error) {
	if err := ValidateCreate(input); err != nil {
		return nil, err
	}

	incident := input.ToDomain()
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	metrics.IncidentsCreated.WithLabelValues(string(incident.Severity)).Inc()
	return incident, nil
}

// GetIncident returns the incident with the given id.
func (s *Service) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

// DeleteIncident removes the incident with the given id.
func (s *Service) DeleteIncident(ctx context.Context, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}

	metrics.IncidentsDeleted.Inc()
	return nil
}

// SeedIfEmpty inserts SampleIncidents when the store holds no incidents.
// It reports whether anything was inserted. Two instances starting against
// the same empty store at once may both seed.
func (s *Service) SeedIfEmpty(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count incidents: %w", err)
	}
	if count > 0 {
		slog.Debug("incident store not empty, skipping seed", "count", count)
		return false, nil
	}

	for _, input := range SampleIncidents() {
		if _, err := s.CreateIncident(ctx, input); err != nil {
			return false, fmt.Errorf("seed incident %q: %w", input.Title, err)
		}
	}

	slog.Info("seeded incident store", "count", len(SampleIncidents()))
	return true, nil
}
