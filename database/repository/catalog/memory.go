package catalogRepo

import (
	"context"
	"sync"

	"practica/models"
)

// MemoryCatalogRepo is an in-memory CatalogRepository for tests and local
// development.
type MemoryCatalogRepo struct {
	mu            sync.RWMutex
	practitioners map[string]models.Practitioner
	services      map[string]models.Service
}

func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{
		practitioners: make(map[string]models.Practitioner),
		services:      make(map[string]models.Service),
	}
}

// PutPractitioner seeds or replaces a practitioner record.
func (r *MemoryCatalogRepo) PutPractitioner(p models.Practitioner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.practitioners[p.ID] = p
}

// PutService seeds or replaces a service record.
func (r *MemoryCatalogRepo) PutService(s models.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.ID] = s
}

func (r *MemoryCatalogRepo) GetPractitioner(ctx context.Context, id string) (*models.Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.practitioners[id]
	if !ok {
		return nil, ErrPractitionerNotFound
	}
	return &p, nil
}

func (r *MemoryCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return &s, nil
}

func (r *MemoryCatalogRepo) ListServices(ctx context.Context, practitionerID string) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Service
	for _, s := range r.services {
		if s.PractitionerID == practitionerID {
			out = append(out, s)
		}
	}
	return out, nil
}
