package repositories

import "image-converter/internal/domain/entities"

type JobFilter struct {
	Status entities.JobStatus
	Limit  int
}

// JobRepository owns every job record. Callers only ever see copies; all mutation
// goes through Update so concurrent writers never lose each other's changes.
type JobRepository interface {
	Create(job *entities.Job) error
	Get(id string) (*entities.Job, error)
	// Update runs fn on the stored job under the repository lock. If fn returns an
	// error nothing is persisted.
	Update(id string, fn func(job *entities.Job) error) (*entities.Job, error)
	Delete(id string) error
	// List returns jobs sorted by start time, most recent first.
	List(filter JobFilter) ([]*entities.Job, error)
	Count() (total int, active int)
}
