// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/incidentlog/internal/domain"
	"github.com/bissquit/incidentlog/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes handled by the repository.
const (
	codeNotNullViolation  = "23502"
	codeCheckViolation    = "23514"
	codeInvalidTextFormat = "22P02"
)

// Repository implements the incidents.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List retrieves all incidents ordered by report time.
func (r *Repository) List(ctx context.Context) ([]domain.Incident, error) {
	query := `
		SELECT id, title, description, severity, reported_at
		FROM incidents
		ORDER BY reported_at, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		if err := scanIncident(rows, &incident); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	return result, nil
}

// Create inserts a new incident. The database assigns the id and, when
// ReportedAt is zero, the report time.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (title, description, severity, reported_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING id, reported_at
	`
	var reportedAt *time.Time
	if !incident.ReportedAt.IsZero() {
		reportedAt = &incident.ReportedAt
	}

	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		string(incident.Severity),
		reportedAt,
	).Scan(&incident.ID, &incident.ReportedAt)

	if err != nil {
		if isRejectedInput(err) {
			return fmt.Errorf("%w: %w", incidents.ErrInvalidInput, err)
		}
		return fmt.Errorf("create incident: %w", err)
	}

	incident.ReportedAt = incident.ReportedAt.UTC()
	return nil
}

// GetByID retrieves an incident by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `
		SELECT id, title, description, severity, reported_at
		FROM incidents
		WHERE id = $1
	`
	var incident domain.Incident
	err := scanIncident(r.db.QueryRow(ctx, query, id), &incident)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		if hasCode(err, codeInvalidTextFormat) {
			return nil, incidents.ErrInvalidID
		}
		return nil, fmt.Errorf("get incident by id: %w", err)
	}

	return &incident, nil
}

// Delete deletes an incident by its ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM incidents WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if hasCode(err, codeInvalidTextFormat) {
			return incidents.ErrInvalidID
		}
		return fmt.Errorf("delete incident: %w", err)
	}

	if result.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// Count returns the number of stored incidents.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return count, nil
}

func scanIncident(row pgx.Row, incident *domain.Incident) error {
	var severity string
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&severity,
		&incident.ReportedAt,
	)
	if err != nil {
		return err
	}
	incident.Severity = domain.Severity(severity)
	incident.ReportedAt = incident.ReportedAt.UTC()
	return nil
}

func isRejectedInput(err error) bool {
	return hasCode(err, codeCheckViolation) || hasCode(err, codeNotNullViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
