package repositories

import (
	"fmt"
	"sort"
	"sync"

	"image-converter/internal/domain/entities"
	"image-converter/internal/domain/repositories"
	apperrors "image-converter/pkg/errors"
)

// InMemoryJobRepository keeps jobs in process memory; nothing survives a restart.
type InMemoryJobRepository struct {
	mu   sync.RWMutex
	data map[string]*entities.Job
}

var _ repositories.JobRepository = (*InMemoryJobRepository)(nil)

func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		data: make(map[string]*entities.Job),
	}
}

func (r *InMemoryJobRepository) Create(job *entities.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[job.ID]; exists {
		return apperrors.ErrInternal(fmt.Errorf("job %s already exists", job.ID))
	}
	r.data[job.ID] = job.Clone()
	return nil
}

func (r *InMemoryJobRepository) Get(id string) (*entities.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, exists := r.data[id]
	if !exists {
		return nil, apperrors.ErrNotFound(fmt.Errorf("job %s", id))
	}
	return job.Clone(), nil
}

func (r *InMemoryJobRepository) Update(id string, fn func(job *entities.Job) error) (*entities.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, exists := r.data[id]
	if !exists {
		return nil, apperrors.ErrNotFound(fmt.Errorf("job %s", id))
	}

	draft := job.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	r.data[id] = draft
	return draft.Clone(), nil
}

func (r *InMemoryJobRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return apperrors.ErrNotFound(fmt.Errorf("job %s", id))
	}
	delete(r.data, id)
	return nil
}

func (r *InMemoryJobRepository) List(filter repositories.JobFilter) ([]*entities.Job, error) {
	r.mu.RLock()
	result := make([]*entities.Job, 0, len(r.data))
	for _, job := range r.data {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		result = append(result, job.Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.After(result[j].StartTime)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Count returns the number of stored jobs and how many of them are not yet terminal.
func (r *InMemoryJobRepository) Count() (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	active := 0
	for _, job := range r.data {
		if !job.Status.IsTerminal() {
			active++
		}
	}
	return len(r.data), active
}
