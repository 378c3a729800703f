package incidents

import (
	"errors"
	"time"

	"github.com/bissquit/incidentlog/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateIncidentInput holds the caller-supplied fields of a new incident.
type CreateIncidentInput struct {
	Title       string     `validate:"required"`
	Description string     `validate:"required"`
	Severity    string     `validate:"required,oneof=Low Medium High"`
	ReportedAt  *time.Time `validate:"-"`
}

// ToDomain converts the input to a domain model. ID and a missing
// ReportedAt are filled in by the repository.
func (in CreateIncidentInput) ToDomain() *domain.Incident {
	incident := &domain.Incident{
		Title:       in.Title,
		Description: in.Description,
		Severity:    domain.Severity(in.Severity),
	}
	if in.ReportedAt != nil {
		incident.ReportedAt = in.ReportedAt.UTC()
	}
	return incident
}

// ValidateCreate checks a create input without touching storage.
// It returns ErrMissingFields when any required field is empty and
// ErrInvalidSeverity when severity is outside the known set.
func ValidateCreate(in CreateIncidentInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			return ErrMissingFields
		}
	}
	return ErrInvalidSeverity
}

// ParseID checks that id has the identifier format used by the store and
// returns its canonical lowercase hyphenated form.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}
