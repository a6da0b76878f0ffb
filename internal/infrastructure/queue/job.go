package queue

type JobType string

const (
	JobProcessBatch JobType = "process_batch"
)

// Job is a unit of queued work. It carries only the id; the job record itself
// stays in the repository.
type Job struct {
	JobID string
	Type  JobType
}
