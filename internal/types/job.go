package types

// JobStatus is the lifecycle state of one remote assistant invocation.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
	JobExpired   JobStatus = "expired"
)

// Terminal reports whether no further transition can occur.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled, JobExpired:
		return true
	}
	return false
}

// Job is a server-side unit of asynchronous work.
type Job struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id,omitempty"`
	Status   JobStatus `json:"status"`
}

// FailureMessage is returned as the recommendation text when a job ends in failed, cancelled or expired.
const FailureMessage = "The assistant could not complete this analysis. Please try again."

// Recommendation is the model's free-text answer for one prompt.
type Recommendation struct {
	Text   string    `json:"text"`
	Action string    `json:"action,omitempty"`
	Model  string    `json:"model,omitempty"`
	JobID  string    `json:"job_id,omitempty"`
	Status JobStatus `json:"status"`
	Failed bool      `json:"failed"`
}

// FailedRecommendation builds the fixed failure result for a terminal job.
func FailedRecommendation(job Job) Recommendation {
	return Recommendation{
		Text:   FailureMessage,
		JobID:  job.ID,
		Status: job.Status,
		Failed: true,
	}
}
