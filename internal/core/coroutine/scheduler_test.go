package coroutine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted is a sequence whose resumptions follow a fixed script and are logged.
type scripted struct {
	name   string
	log    *[]string
	script []Result
	i      int
}

func (s *scripted) Resume(float64) Result {
	*s.log = append(*s.log, s.name)
	if s.i >= len(s.script) {
		return Done()
	}
	r := s.script[s.i]
	s.i++
	return r
}

// once runs fn on its first resumption and completes.
func once(fn func()) Sequence {
	return Func(func(float64) Result {
		fn()
		return Done()
	})
}

func TestSchedulerSubmitVisibleNextTick(t *testing.T) {
	s := NewScheduler()
	assert.False(t, s.IsBusy())

	var log []string
	s.Go(&scripted{name: "a", log: &log, script: []Result{Continue()}})
	assert.True(t, s.IsBusy(), "queued tasks count as busy")
	assert.Empty(t, log, "nothing runs before the first tick")

	s.Tick(0.1)
	assert.Equal(t, []string{"a"}, log)

	s.Tick(0.1)
	assert.Equal(t, []string{"a", "a"}, log)
	assert.False(t, s.IsBusy())
}

func TestSchedulerChildCompletionResumesParentSameTick(t *testing.T) {
	var log []string
	child := &scripted{name: "child", log: &log, script: []Result{Continue()}}
	outer := &scripted{name: "outer", log: &log, script: []Result{Yield(child), Continue()}}

	s := NewScheduler()
	task := s.Go(outer)

	s.Tick(1)
	assert.Equal(t, []string{"outer"}, log, "yield stops the stack for this tick")
	assert.Equal(t, 2, task.Depth())

	s.Tick(1)
	assert.Equal(t, []string{"outer", "child"}, log)

	log = nil
	s.Tick(1)
	assert.Equal(t, []string{"child", "outer"}, log, "outer resumes in the tick the child completes")
	assert.Equal(t, 1, task.Depth())

	log = nil
	s.Tick(1)
	assert.Equal(t, []string{"outer"}, log)
	assert.True(t, task.Finished())
	assert.False(t, s.IsBusy())
}

func TestSchedulerNestedChildren(t *testing.T) {
	var log []string
	inner := &scripted{name: "inner", log: &log}
	middle := &scripted{name: "middle", log: &log, script: []Result{Yield(inner)}}
	outer := &scripted{name: "outer", log: &log, script: []Result{Yield(middle)}}

	s := NewScheduler()
	task := s.Go(outer)
	s.Tick(1)
	s.Tick(1)
	log = nil

	s.Tick(1)
	assert.Equal(t, []string{"inner", "middle", "outer"}, log, "completion cascades down the stack in one tick")
	assert.True(t, task.Finished())
}

func TestSchedulerTimedWaitPrecision(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for round := 0; round < 100; round++ {
		duration := 0.1 + rng.Float64()*2
		fired := false
		elapsed := 0.0
		firedAt := 0.0

		s := NewScheduler()
		s.Submit(once(func() {
			fired = true
			firedAt = elapsed
		}), duration)

		for i := 0; i < 1000 && !fired; i++ {
			dt := rng.Float64() * 0.3
			elapsed += dt
			s.Tick(dt)
			if !fired {
				require.Less(t, elapsed, duration+1e-9, "wait outlived its duration")
			}
		}
		require.True(t, fired, "round %d", round)
		assert.GreaterOrEqual(t, firedAt+1e-9, duration, "round %d fired early", round)
	}
}

func TestWaitExactBoundary(t *testing.T) {
	fired := 0
	s := NewScheduler()
	s.Submit(once(func() { fired++ }), 1)

	s.Tick(0.5)
	assert.Equal(t, 0, fired)
	s.Tick(0.5)
	assert.Equal(t, 1, fired, "cumulative elapsed equal to the duration completes the wait")
}

func TestSchedulerCancel(t *testing.T) {
	var log []string
	forever := &scripted{name: "forever", log: &log, script: make([]Result, 100)}
	s := NewScheduler()
	task := s.Go(forever)

	s.Tick(1)
	s.Tick(1)
	require.Len(t, log, 2)

	s.Cancel(task)
	assert.True(t, s.IsBusy(), "cancellation is deferred to the next tick boundary")
	s.Tick(1)
	assert.Len(t, log, 2)
	assert.False(t, s.IsBusy())
	assert.False(t, task.Finished())
}

func TestSchedulerCancelFromInsideTick(t *testing.T) {
	var log []string
	s := NewScheduler()

	second := &scripted{name: "second", log: &log, script: make([]Result, 10)}
	var secondTask *Task
	first := Func(func(float64) Result {
		log = append(log, "first")
		s.Cancel(secondTask)
		return Continue()
	})
	s.Go(first)
	secondTask = s.Go(second)

	s.Tick(1)
	assert.Equal(t, []string{"first"}, log, "a task canceled earlier in the sweep is skipped")
	assert.Equal(t, 1, s.Len())
}

func TestSchedulerSubmitFromInsideTick(t *testing.T) {
	var log []string
	s := NewScheduler()
	spawned := false
	s.Go(Func(func(float64) Result {
		if !spawned {
			spawned = true
			s.Go(&scripted{name: "late", log: &log})
		}
		log = append(log, "spawner")
		return Continue()
	}))

	s.Tick(1)
	assert.Equal(t, []string{"spawner"}, log)
	s.Tick(1)
	assert.Equal(t, []string{"spawner", "spawner", "late"}, log)
}

func TestLoop(t *testing.T) {
	var ticks []int
	s := NewScheduler()
	task := s.Go(Loop(3, func(i int, _ float64) { ticks = append(ticks, i) }))

	for range 3 {
		s.Tick(0.1)
	}
	assert.Equal(t, []int{0, 1, 2}, ticks)
	assert.False(t, task.Finished())

	s.Tick(0.1)
	assert.True(t, task.Finished(), "completes on the tick after the last body call")
	assert.Equal(t, []int{0, 1, 2}, ticks)
}

func TestSchedulerCancelBeforeFirstTick(t *testing.T) {
	ran := false
	s := NewScheduler()
	task := s.Go(once(func() { ran = true }))
	s.Cancel(task)

	s.Tick(1)
	s.Tick(1)
	assert.False(t, ran)
	assert.False(t, s.IsBusy())
	assert.False(t, task.Finished())
}

func TestSubmitNilPanics(t *testing.T) {
	assert.Panics(t, func() { NewScheduler().Go(nil) })
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Continue", StatusContinue.String())
	assert.Equal(t, "Yield", StatusYield.String())
	assert.Equal(t, "Done", StatusDone.String())
	assert.Equal(t, "Invalid", Status(9).String())
}
