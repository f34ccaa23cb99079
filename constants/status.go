package constants

// RunStatus is the canonical status for one document run through the pipeline.
type RunStatus string

// Stable values (these exact strings appear in logs and exports).
const (
	RunStatusQueued  RunStatus = "QUEUED"  // waiting for a worker
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusDone    RunStatus = "DONE"    // report produced
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure at some stage
)
