package incidents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bissquit/incidentlog/internal/domain"
	"github.com/google/uuid"
)

// mockRepository implements Repository in memory for testing.
type mockRepository struct {
	mu        sync.Mutex
	incidents map[string]domain.Incident
	order     []string

	listErr   error
	createErr error
	countErr  error

	createCalls int
	getCalls    int
	deleteCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		incidents: make(map[string]domain.Incident),
	}
}

func (m *mockRepository) List(_ context.Context) ([]domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]domain.Incident, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.incidents[id])
	}
	return result, nil
}

func (m *mockRepository) Create(_ context.Context, incident *domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if !incident.Severity.IsValid() {
		return fmt.Errorf("%w: severity %q", ErrInvalidInput, incident.Severity)
	}

	incident.ID = uuid.NewString()
	if incident.ReportedAt.IsZero() {
		incident.ReportedAt = time.Now().UTC()
	}
	m.incidents[incident.ID] = *incident
	m.order = append(m.order, incident.ID)
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	incident, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	return &incident, nil
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls++
	if _, ok := m.incidents[id]; !ok {
		return ErrIncidentNotFound
	}
	delete(m.incidents, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockRepository) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.incidents), nil
}
