package pipeline

import (
	"sync"
	"time"

	"github.com/bmarkwell/docslice/internal/model"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single document extraction.
type Job struct {
	mu sync.Mutex

	ID         string    `json:"job_id"`
	DocumentID string    `json:"document_id"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Filename   string    `json:"filename"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	params ExtractParams
	result *model.ExtractionResult
	errMsg string
}

// NewJob wraps one extraction request as a queued job.
func NewJob(params ExtractParams) *Job {
	now := time.Now()
	return &Job{
		ID:         NewID(),
		DocumentID: params.Input.DocumentID,
		Status:     StatusQueued,
		Phase:      "queued",
		Filename:   params.Input.Filename,
		CreatedAt:  now,
		UpdatedAt:  now,
		params:     params,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetResult records a successful extraction.
func (j *Job) SetResult(result model.ExtractionResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &result
	j.DocumentID = result.DocumentID
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// SetError records a failed extraction.
func (j *Job) SetError(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errMsg = err.Error()
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

// Result returns the extraction result once completed, or nil.
func (j *Job) Result() *model.ExtractionResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	DocumentID string    `json:"document_id"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Filename   string    `json:"filename"`
	Error      string    `json:"error,omitempty"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	Dropped    int       `json:"dropped"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:         j.ID,
		DocumentID: j.DocumentID,
		Status:     j.Status,
		Phase:      j.Phase,
		Filename:   j.Filename,
		Error:      j.errMsg,
	}
	if j.result != nil {
		snap.Pages = len(j.result.Pages)
		snap.Chunks = len(j.result.Chunks)
		snap.Dropped = len(j.result.Dropped)
	}
	return snap
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
