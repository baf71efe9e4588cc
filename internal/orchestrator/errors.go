package orchestrator

import "fmt"

// Phase is a state of the job state machine.
type Phase string

const (
	PhaseGrouping    Phase = "grouping"
	PhaseProcessing  Phase = "processing"
	PhaseAggregating Phase = "aggregating"
	PhaseScaffolding Phase = "scaffolding"
	PhaseReconciling Phase = "reconciling"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// JobError is the single job-level failure. Group is the failing file group
// id during processing, and Path the colliding path during reconciliation.
type JobError struct {
	JobID string
	Phase Phase
	Group int
	Path  string
	Err   error
}

func (e *JobError) Error() string {
	switch {
	case e.Phase == PhaseProcessing:
		return fmt.Sprintf("job %s failed while processing group %d: %v", e.JobID, e.Group, e.Err)
	case e.Path != "":
		return fmt.Sprintf("job %s failed while %s %s: %v", e.JobID, e.Phase, e.Path, e.Err)
	default:
		return fmt.Sprintf("job %s failed during %s: %v", e.JobID, e.Phase, e.Err)
	}
}

func (e *JobError) Unwrap() error { return e.Err }
