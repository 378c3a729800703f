// Package dynamo provides a DynamoDB implementation of the incidents repository.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bissquit/incidentlog/internal/domain"
	"github.com/bissquit/incidentlog/internal/incidents"
	"github.com/google/uuid"
	"github.com/guregu/dynamo/v2"
)

// item is the stored document shape of an incident.
type item struct {
	ID          string    `dynamo:"id,hash"`
	Title       string    `dynamo:"title"`
	Description string    `dynamo:"description"`
	Severity    string    `dynamo:"severity"`
	ReportedAt  time.Time `dynamo:"reported_at"`
}

func fromDomain(incident *domain.Incident) item {
	return item{
		ID:          incident.ID,
		Title:       incident.Title,
		Description: incident.Description,
		Severity:    string(incident.Severity),
		ReportedAt:  incident.ReportedAt,
	}
}

func (it item) toDomain() domain.Incident {
	return domain.Incident{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Severity:    domain.Severity(it.Severity),
		ReportedAt:  it.ReportedAt.UTC(),
	}
}

// Repository implements the incidents.Repository interface using DynamoDB.
type Repository struct {
	db    *dynamo.DB
	table dynamo.Table
	now   func() time.Time
}

// NewRepository creates a new DynamoDB repository over the named table.
func NewRepository(db *dynamo.DB, tableName string) *Repository {
	return &Repository{
		db:    db,
		table: db.Table(tableName),
		now:   time.Now,
	}
}

// EnsureTable creates the incidents table with on-demand billing if it
// does not exist yet and blocks until the table is active.
func (r *Repository) EnsureTable(ctx context.Context) error {
	_, err := r.table.Describe().Run(ctx)
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", r.table.Name(), err)
	}

	slog.Info("creating dynamodb table", "table", r.table.Name())
	err = r.db.CreateTable(r.table.Name(), item{}).OnDemand(true).Wait(ctx)

	// Another instance created it first.
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		err = r.table.Wait(ctx)
	}
	if err != nil {
		return fmt.Errorf("create table %s: %w", r.table.Name(), err)
	}
	return nil
}

// Ping checks that the table is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.table.Describe().Run(ctx); err != nil {
		return fmt.Errorf("describe table %s: %w", r.table.Name(), err)
	}
	return nil
}

// List retrieves all incidents ordered by report time.
func (r *Repository) List(ctx context.Context) ([]domain.Incident, error) {
	var items []item
	if err := r.table.Scan().All(ctx, &items); err != nil {
		return nil, fmt.Errorf("scan incidents: %w", err)
	}

	result := make([]domain.Incident, 0, len(items))
	for _, it := range items {
		result = append(result, it.toDomain())
	}

	slices.SortFunc(result, func(a, b domain.Incident) int {
		if c := a.ReportedAt.Compare(b.ReportedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	return result, nil
}

// Create stores a new incident under a freshly generated id.
// DynamoDB has no column constraints; required fields and severity are
// checked here instead.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	if incident.Title == "" || incident.Description == "" || !incident.Severity.IsValid() {
		return incidents.ErrInvalidInput
	}

	incident.ID = uuid.NewString()
	if incident.ReportedAt.IsZero() {
		incident.ReportedAt = r.now().UTC()
	}

	err := r.table.Put(fromDomain(incident)).
		If("attribute_not_exists($)", "id").
		Run(ctx)
	if err != nil {
		return fmt.Errorf("put incident: %w", err)
	}
	return nil
}

// GetByID retrieves an incident by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	var it item
	if err := r.table.Get("id", id).One(ctx, &it); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident by id: %w", err)
	}

	incident := it.toDomain()
	return &incident, nil
}

// Delete deletes an incident by its ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.table.Delete("id", id).
		If("attribute_exists($)", "id").
		Run(ctx)
	if err != nil {
		if dynamo.IsCondCheckFailed(err) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("delete incident: %w", err)
	}
	return nil
}

// Count returns the number of stored incidents.
func (r *Repository) Count(ctx context.Context) (int, error) {
	n, err := r.table.Scan().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return int(n), nil
}
