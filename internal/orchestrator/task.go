package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/valpere/shapetran/internal/formatter"
)

type State int32

const (
	Idle State = iota
	Preparing
	BackendInvoked
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preparing:
		return "preparing"
	case BackendInvoked:
		return "backend-invoked"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Progress milestones reported on Task.Progress. They only drive user
// feedback.
const (
	ProgressFailed    = 0
	ProgressLoading   = 10
	ProgressModel     = 50
	ProgressPrepared  = 70
	ProgressSubmitted = 80
	ProgressGenerated = 90
	ProgressDone      = 100
)

// maxMilestones bounds the sends on a task's progress channel.
const maxMilestones = 8

type Result struct {
	State State
	// Text is the restored translation on success and the formatted
	// failure message otherwise.
	Text string
	Err  error

	Raw        string
	Tier       formatter.Tier
	Truncated  bool
	Cached     bool
	Warnings   []string
	Backend    string
	SourceLang string
	TargetLang string
	Latency    time.Duration
}

// Task is one submitted translation. Progress values arrive on Progress in
// increasing order (or a final 0 on failure); the channel is closed when
// the task reaches a terminal state.
type Task struct {
	progress chan int
	done     chan struct{}
	state    atomic.Int32

	once   sync.Once
	result Result
}

func newTask() *Task {
	return &Task{
		progress: make(chan int, maxMilestones),
		done:     make(chan struct{}),
	}
}

func (t *Task) Progress() <-chan int {
	return t.progress
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) State() State {
	return State(t.state.Load())
}

// Result returns the terminal result, or a zero Result with the current
// state if the task has not finished.
func (t *Task) Result() Result {
	select {
	case <-t.done:
		return t.result
	default:
		return Result{State: t.State()}
	}
}

// Wait blocks until the task finishes and returns its result.
func (t *Task) Wait() Result {
	<-t.done
	return t.result
}

func (t *Task) setState(s State) {
	t.state.Store(int32(s))
}

func (t *Task) report(value int) {
	select {
	case t.progress <- value:
	default:
	}
}

func (t *Task) finish(r Result) {
	t.once.Do(func() {
		t.result = r
		t.setState(r.State)
		close(t.progress)
		close(t.done)
	})
}
