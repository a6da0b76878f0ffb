package entities

import (
	"errors"
	"fmt"
	"time"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are legal from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobQueued, JobProcessing, JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

var transitions = map[JobStatus][]JobStatus{
	JobQueued:     {JobProcessing, JobCancelled},
	JobProcessing: {JobCompleted, JobFailed, JobCancelled},
}

var ErrIllegalTransition = errors.New("illegal job status transition")

// FileDescriptor points at one uploaded input image.
type FileDescriptor struct {
	Path         string `json:"-"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

type Progress struct {
	Processed  int     `json:"processed"`
	Total      int     `json:"total"`
	Percentage int     `json:"percentage"`
	Speed      float64 `json:"speed"` // images/sec, cumulative
	ETA        float64 `json:"eta"`   // seconds
}

// TransformOutput is what the pipeline reports for one successfully written image.
type TransformOutput struct {
	OriginalSize   int64
	ProcessedSize  int64
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
}

// Result is the immutable outcome of transforming one input file.
type Result struct {
	Success        bool   `json:"success"`
	OriginalName   string `json:"originalName"`
	OutputName     string `json:"outputName"`
	OutputPath     string `json:"-"`
	OriginalSize   int64  `json:"originalSize,omitempty"`
	ProcessedSize  int64  `json:"processedSize,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	OriginalWidth  int    `json:"originalWidth,omitempty"`
	OriginalHeight int    `json:"originalHeight,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Archive describes the packaged outputs of a job.
type Archive struct {
	Path string
	Size int64
	URL  string
	// Key identifies the archive inside the storage it was published to.
	Key string
}

type Job struct {
	ID       string
	Status   JobStatus
	Files    []FileDescriptor
	Settings Settings
	Progress Progress
	Results  []Result

	SuccessCount int
	FailedCount  int

	DownloadURL string
	ArchivePath string
	ArchiveSize int64
	ArchiveKey  string

	// Errors holds non-fatal, job level warnings.
	Errors []string
	// Error is the human readable reason of a failed job.
	Error string

	RetryOf   string
	CreatedAt time.Time
	StartTime time.Time
	EndTime   time.Time
}

func NewJob(id string, files []FileDescriptor, settings Settings, now time.Time) *Job {
	fs := make([]FileDescriptor, len(files))
	copy(fs, files)
	return &Job{
		ID:        id,
		Status:    JobQueued,
		Files:     fs,
		Settings:  settings,
		Progress:  Progress{Total: len(fs)},
		Results:   []Result{},
		Errors:    []string{},
		CreatedAt: now,
		StartTime: now,
	}
}

// Transition moves the job to the given status if the state machine allows it.
func (j *Job) Transition(to JobStatus) error {
	for _, allowed := range transitions[j.Status] {
		if allowed == to {
			j.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, j.Status, to)
}

func (j *Job) Duration() time.Duration {
	if j.EndTime.IsZero() || j.StartTime.IsZero() {
		return 0
	}
	return j.EndTime.Sub(j.StartTime)
}

func (j *Job) SuccessfulResults() []Result {
	out := make([]Result, 0, len(j.Results))
	for _, r := range j.Results {
		if r.Success {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a deep copy so callers never share slices with the store.
func (j *Job) Clone() *Job {
	c := *j
	c.Files = append([]FileDescriptor(nil), j.Files...)
	c.Results = append([]Result(nil), j.Results...)
	c.Errors = append([]string(nil), j.Errors...)
	return &c
}
