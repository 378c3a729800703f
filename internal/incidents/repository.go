package incidents

import (
	"context"

	"github.com/bissquit/incidentlog/internal/domain"
)

// Repository defines the interface for incident data operations.
type Repository interface {
	List(ctx context.Context) ([]domain.Incident, error)
	// Create persists incident, setting its ID and, when zero, ReportedAt.
	Create(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
