package proc

import "fmt"

// ResolutionError means a program name could not be resolved to an
// executable path. The pipeline is aborted before any process exists.
type ResolutionError struct {
	Program string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: command not found", e.Program)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SpawnError means a process-creation primitive failed mid-pipeline.
// Already-created siblings are still settled, never abandoned.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// GroupingError means the OS refused a process-group assignment.
type GroupingError struct {
	PID int
	Err error
}

func (e *GroupingError) Error() string {
	return fmt.Sprintf("failed to assign process %d to process group: %v", e.PID, e.Err)
}

func (e *GroupingError) Unwrap() error { return e.Err }

// ForegroundError means the OS refused a terminal foreground reassignment.
// It aborts the current operation but never the shell itself.
type ForegroundError struct {
	PGID int
	Err  error
}

func (e *ForegroundError) Error() string {
	return fmt.Sprintf("failed to set process group %d as terminal foreground: %v", e.PGID, e.Err)
}

func (e *ForegroundError) Unwrap() error { return e.Err }

// WaitError means a state-change query itself failed. Treated as
// best-effort; processing continues.
type WaitError struct {
	PID int
	Err error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("failed to wait for process %d: %v", e.PID, e.Err)
}

func (e *WaitError) Unwrap() error { return e.Err }
