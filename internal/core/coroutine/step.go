package coroutine

// Status tells the scheduler what a resumed sequence wants next.
type Status uint8

const (
	// StatusContinue suspends the task until the next tick.
	StatusContinue Status = iota
	// StatusYield pushes a child sequence. The child is first resumed on the
	// next tick and the parent resumes once the child completes.
	StatusYield
	// StatusDone pops the sequence; the parent resumes within the same tick.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusContinue:
		return "Continue"
	case StatusYield:
		return "Yield"
	case StatusDone:
		return "Done"
	default:
		return "Invalid"
	}
}

// Result is the outcome of one resumption.
type Result struct {
	Status Status
	Child  Sequence
}

func Continue() Result { return Result{Status: StatusContinue} }

func Done() Result { return Result{Status: StatusDone} }

// Yield suspends the caller until child completes. A nil child behaves like Continue.
func Yield(child Sequence) Result {
	if child == nil {
		return Continue()
	}
	return Result{Status: StatusYield, Child: child}
}

// Sequence is a resumable unit of work. Resume is called once per tick while
// the sequence is on top of its task stack, plus once more in the tick its
// child completes.
type Sequence interface {
	Resume(dt float64) Result
}

// Func adapts a step closure to Sequence.
type Func func(dt float64) Result

func (f Func) Resume(dt float64) Result { return f(dt) }

type wait struct {
	remaining float64
}

// Wait completes once the elapsed time fed to it reaches duration. The parent
// of the wait resumes in the tick that exhausts it.
func Wait(duration float64) Sequence {
	return &wait{remaining: duration}
}

func (w *wait) Resume(dt float64) Result {
	w.remaining -= dt
	if w.remaining > 0 {
		return Continue()
	}
	return Done()
}

type loop struct {
	count int
	i     int
	body  func(i int, dt float64)
}

// Loop calls body once per tick, count times, then completes on the following tick.
func Loop(count int, body func(i int, dt float64)) Sequence {
	return &loop{count: count, body: body}
}

func (l *loop) Resume(dt float64) Result {
	if l.i >= l.count {
		return Done()
	}
	l.body(l.i, dt)
	l.i++
	return Continue()
}
