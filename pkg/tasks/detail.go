package tasks

import (
	"context"
	"sync"
)

// DetailView holds one task for display while subtask toggles are in flight.
// A toggle flips the local checkbox immediately as a latency hint, then
// always reconciles from a fresh authoritative fetch, success or failure.
// Reconciliations superseded by a newer toggle are discarded.
type DetailView struct {
	mu         sync.Mutex
	svc        *Service
	task       Task
	generation uint64
}

// NewDetailView fetches the task and wraps it for mutation.
func NewDetailView(ctx context.Context, svc *Service, taskID int) (*DetailView, error) {
	t, err := svc.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &DetailView{svc: svc, task: t}, nil
}

// Task returns the current (possibly tentatively mutated) task.
func (v *DetailView) Task() Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.task
}

// ToggleSubtask optimistically flips the subtask locally, issues the write
// and reconciles from the server regardless of the outcome. The returned
// error is the write's error; the view itself always ends up holding server
// truth.
func (v *DetailView) ToggleSubtask(ctx context.Context, subtaskID int) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.flipLocal(subtaskID)
	taskID := v.task.ID
	v.mu.Unlock()

	writeErr := v.svc.ToggleSubtask(ctx, subtaskID)

	// Reconcile from the authority. The optimistic flip is never a durable
	// source of truth, so a failed refetch just leaves the flip in place
	// until the next successful one.
	if fresh, err := v.svc.Get(ctx, taskID); err == nil {
		v.mu.Lock()
		if gen == v.generation {
			v.task = fresh
		}
		v.mu.Unlock()
	}
	return writeErr
}

func (v *DetailView) flipLocal(subtaskID int) {
	for ai := range v.task.Assignments {
		for si := range v.task.Assignments[ai].Subtasks {
			st := &v.task.Assignments[ai].Subtasks[si]
			if st.ID == subtaskID {
				st.Done = !st.Done
				return
			}
		}
	}
}

// Refresh replaces the held task with a fresh fetch.
func (v *DetailView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	taskID := v.task.ID
	v.mu.Unlock()

	fresh, err := v.svc.Get(ctx, taskID)
	if err != nil {
		return err
	}
	v.mu.Lock()
	if gen == v.generation {
		v.task = fresh
	}
	v.mu.Unlock()
	return nil
}
