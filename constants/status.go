package constants

// PipelineStatus is the terminal status of a pipeline run. Degenerate outcomes
// are statuses, not errors; callers branch on them as data.
type PipelineStatus string

const (
	StatusOK             PipelineStatus = "ok"
	StatusNoAmountsFound PipelineStatus = "no_amounts_found"
	StatusLowConfidence  PipelineStatus = "low_confidence"
	StatusInvalidAmounts PipelineStatus = "invalid_amounts"
)

// JobStatus is the canonical status for persisted extraction runs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)
