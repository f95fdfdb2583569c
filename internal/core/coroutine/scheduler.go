// Package coroutine runs cooperative, time-sliced task sequences on the frame loop.
package coroutine

import (
	"github.com/zeusync/conga/internal/core/collection"
)

// Task is the handle of a submitted sequence. It is the only thing that can be
// canceled; sequences pushed by a task as children cannot be canceled alone.
type Task struct {
	stack    []Sequence
	finished bool
	canceled bool
}

// Finished reports whether the outer sequence completed.
func (t *Task) Finished() bool {
	return t.finished
}

// Depth is the current number of nested sequences on the task stack.
func (t *Task) Depth() int {
	return len(t.stack)
}

// Scheduler resumes its tasks once per Tick in submission order.
//
// Submissions and cancellations are deferred to tick boundaries the same way
// collection.Safe defers adds and removes. There is no timeout: a task whose
// outer sequence never completes is resumed every tick until Cancel is called.
//
// A Scheduler is owned by the frame loop and is not safe for concurrent use.
type Scheduler struct {
	tasks *collection.Safe[*Task]
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: collection.NewSafe[*Task]()}
}

// Submit queues seq for execution starting with the next Tick. A positive
// delay puts a timed wait in front of it.
func (s *Scheduler) Submit(seq Sequence, delay float64) *Task {
	if seq == nil {
		panic("coroutine: submit of nil sequence")
	}
	task := &Task{stack: []Sequence{seq}}
	if delay > 0 {
		task.stack = append(task.stack, Wait(delay))
	}
	s.tasks.Add(task)
	return task
}

// Go submits seq without delay.
func (s *Scheduler) Go(seq Sequence) *Task {
	return s.Submit(seq, 0)
}

// Cancel marks the task for removal. A task in the middle of its resumption
// finishes that resumption; it is not resumed again.
func (s *Scheduler) Cancel(task *Task) {
	if task == nil {
		return
	}
	task.canceled = true
	s.tasks.Remove(task)
}

// IsBusy reports whether any task is queued or active.
func (s *Scheduler) IsBusy() bool {
	return !s.tasks.IsEmpty()
}

// Len counts queued and active tasks.
func (s *Scheduler) Len() int {
	return s.tasks.Len()
}

// Tick resumes every live task once with the elapsed time dt.
func (s *Scheduler) Tick(dt float64) {
	s.tasks.ForEach(func(task *Task) {
		if task.canceled {
			// Canceled before its submission was flushed.
			s.tasks.Remove(task)
			return
		}
		if s.resume(task, dt) {
			task.finished = true
			s.tasks.Remove(task)
		}
	})
}

// resume drives the top of the task stack until it suspends and reports
// whether the outer sequence completed.
func (s *Scheduler) resume(task *Task, dt float64) bool {
	for len(task.stack) > 0 {
		top := task.stack[len(task.stack)-1]
		res := top.Resume(dt)

		switch res.Status {
		case StatusDone:
			if len(task.stack) == 1 {
				task.stack = task.stack[:0]
				return true
			}
			task.stack[len(task.stack)-1] = nil
			task.stack = task.stack[:len(task.stack)-1]
		case StatusYield:
			task.stack = append(task.stack, res.Child)
			return false
		default:
			return false
		}
	}
	return true
}
