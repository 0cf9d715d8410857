package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/edsu/fedsup/internal/logging"
	"github.com/edsu/fedsup/internal/report"
)

// State is the supervisor's position in its two-state cycle. Terminal state
// is reachable only through cancellation, checked between states.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running" // a child is executing
	StateWaiting State = "waiting" // sleeping until the next invocation
	StateStopped State = "stopped"
)

// Invoker runs one child invocation to completion.
type Invoker interface {
	Invoke(ctx context.Context, seq uint64, mode string) *report.Result
}

// Observer receives iteration lifecycle events. Observers are visibility
// only; nothing they see or return changes loop behavior.
type Observer interface {
	OnInvocationStart(seq uint64)
	OnResult(r *report.Result)
}

// Supervisor drives the invocation loop: run the child, ignore its exit
// status, sleep the interval, repeat. No backoff, no retry cap, no
// crash-loop detection. One child at a time, strictly sequential.
type Supervisor struct {
	invoker   Invoker
	sleep     time.Duration
	sessionID string
	log       *logging.Logger
	observers []Observer

	mu         sync.Mutex
	state      State
	iterations uint64
}

// New creates a supervisor. sleep is the pause between invocations.
func New(invoker Invoker, sleep time.Duration, sessionID string, log *logging.Logger) *Supervisor {
	return &Supervisor{
		invoker:   invoker,
		sleep:     sleep,
		sessionID: sessionID,
		log:       log,
		state:     StateIdle,
	}
}

// AddObserver registers an observer. Call before Run.
func (s *Supervisor) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Run loops until ctx is cancelled. A failing child never stops the loop;
// the only exit path is cancellation, checked between states rather than
// inside them.
func (s *Supervisor) Run(ctx context.Context) {
	s.log.Info("supervisor starting", map[string]interface{}{
		"session":  s.sessionID,
		"interval": s.sleep.String(),
	})

	defer s.setState(StateStopped)

	for seq := uint64(1); ; seq++ {
		if ctx.Err() != nil {
			break
		}

		s.setState(StateRunning)
		for _, o := range s.observers {
			o.OnInvocationStart(seq)
		}

		res := s.invoker.Invoke(ctx, seq, "loop")

		s.mu.Lock()
		s.iterations++
		s.mu.Unlock()

		for _, o := range s.observers {
			o.OnResult(res)
		}

		if ctx.Err() != nil {
			break
		}

		s.setState(StateWaiting)
		select {
		case <-ctx.Done():
			s.log.Info("supervisor stopping", map[string]interface{}{"session": s.sessionID})
			return
		case <-time.After(s.sleep):
		}
	}

	s.log.Info("supervisor stopping", map[string]interface{}{"session": s.sessionID})
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Status reports the current state for the health endpoint.
func (s *Supervisor) Status() report.HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.HealthStatus{
		SessionID:  s.sessionID,
		State:      string(s.state),
		Iterations: s.iterations,
	}
}
