// Package simulator stands in for the remote service. Each Run suspends for
// a configured latency, may fail at a configured rate, and otherwise settles
// with a server-stamped result.
package simulator

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-desk/internal/config"
	"github.com/spec-kit/complaint-desk/internal/observability"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

// Operation names a logical remote call.
type Operation string

const (
	OpLogin           Operation = "login"
	OpSignup          Operation = "signup"
	OpSubmitComplaint Operation = "submit_complaint"
	OpAssignTask      Operation = "assign_task"
	OpAdvanceTask     Operation = "advance_task"
	OpPasswordReset   Operation = "password_reset"
)

var idPrefixes = map[Operation]string{
	OpLogin:           PrefixUser,
	OpSignup:          PrefixUser,
	OpSubmitComplaint: PrefixComplaint,
	OpAssignTask:      PrefixAssignment,
}

var (
	// ErrSlotBusy rejects a call while another one holds the same slot.
	ErrSlotBusy = errors.New("simulator: slot busy")
	// ErrStaleResult is returned when a newer call superseded this one.
	ErrStaleResult = errors.New("simulator: stale result")
)

// Timing is the latency and failure rate of one operation.
type Timing struct {
	Delay              time.Duration
	FailureProbability float64
}

// Profile maps operations to their timing.
type Profile map[Operation]Timing

// ProfileFromConfig builds the default profile.
func ProfileFromConfig(cfg config.SimulatorConfig) Profile {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return Profile{
		OpLogin:           {Delay: ms(cfg.LoginDelayMs)},
		OpSignup:          {Delay: ms(cfg.SignupDelayMs), FailureProbability: cfg.SignupFailureProbability},
		OpSubmitComplaint: {Delay: ms(cfg.ComplaintDelayMs)},
		OpAssignTask:      {Delay: ms(cfg.AssignDelayMs)},
		OpAdvanceTask:     {Delay: ms(cfg.TransitionDelayMs)},
		OpPasswordReset:   {Delay: ms(cfg.PasswordResetDelayMs)},
	}
}

// Request describes one simulated call.
type Request struct {
	// Slot is the logical "one in-flight action" key, e.g. "task:CM000123".
	Slot      string
	Operation Operation
	Payload   map[string]any
	// Check runs after the delay and stands in for server-side logic such
	// as a credential match. Its error is returned unchanged.
	Check func(ctx context.Context) error
	// Timing overrides the profile when set.
	Timing *Timing
}

// Result is a settled success.
type Result struct {
	Seq       uint64
	Operation Operation
	ID        string
	Timestamp time.Time
	Payload   map[string]any
}

// Sleeper suspends for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type slotState struct {
	latest  uint64
	pending bool
}

// Simulator runs requests against a timing profile.
type Simulator struct {
	mu      sync.Mutex
	slots   map[string]*slotState
	profile Profile
	ids     *IDGenerator
	sleep   Sleeper
	random  func() float64
	now     func() time.Time
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Option configures a Simulator.
type Option func(*Simulator)

func WithSleeper(s Sleeper) Option { return func(sim *Simulator) { sim.sleep = s } }

func WithRandom(r func() float64) Option { return func(sim *Simulator) { sim.random = r } }

func WithClock(now func() time.Time) Option { return func(sim *Simulator) { sim.now = now } }

func WithIDGenerator(g *IDGenerator) Option { return func(sim *Simulator) { sim.ids = g } }

func WithLogger(l *zap.Logger) Option { return func(sim *Simulator) { sim.logger = l } }

func WithMetrics(m *observability.Metrics) Option { return func(sim *Simulator) { sim.metrics = m } }

// New creates a simulator.
func New(profile Profile, opts ...Option) *Simulator {
	s := &Simulator{
		slots:   make(map[string]*slotState),
		profile: profile,
		sleep:   contextSleep,
		random:  rand.Float64,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewIDGenerator(s.now)
	}
	return s
}

// IDs exposes the generator so callers can mint ids outside a Run.
func (s *Simulator) IDs() *IDGenerator {
	return s.ids
}

// Run executes req. It rejects with ErrSlotBusy while the slot has a call
// in flight, fails with a SIMULATED_FAILURE error at the configured rate,
// and returns ErrStaleResult if Invalidate superseded the call meanwhile.
func (s *Simulator) Run(ctx context.Context, req Request) (*Result, error) {
	seq, err := s.acquire(req.Slot)
	if err != nil {
		s.record(req.Operation, "busy")
		return nil, err
	}

	timing := s.profile[req.Operation]
	if req.Timing != nil {
		timing = *req.Timing
	}

	res, err := s.execute(ctx, req, timing, seq)
	if stale := s.release(req.Slot, seq); stale {
		s.logger.Debug("discarding stale simulator result",
			zap.String("slot", req.Slot),
			zap.Uint64("seq", seq),
			zap.String("operation", string(req.Operation)))
		s.record(req.Operation, "stale")
		return nil, ErrStaleResult
	}
	if err != nil {
		s.record(req.Operation, "failed")
		return nil, err
	}
	s.record(req.Operation, "ok")
	return res, nil
}

// Invalidate supersedes whatever is in flight for slot and frees it.
func (s *Simulator) Invalidate(slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.slotLocked(slot)
	st.latest++
	st.pending = false
}

// Pending reports whether slot has a call in flight.
func (s *Simulator) Pending(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.slots[slot]
	return ok && st.pending
}

// Latest returns the newest sequence number issued for slot.
func (s *Simulator) Latest(slot string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.slots[slot]; ok {
		return st.latest
	}
	return 0
}

func (s *Simulator) execute(ctx context.Context, req Request, timing Timing, seq uint64) (*Result, error) {
	if timing.Delay > 0 {
		if err := s.sleep(ctx, timing.Delay); err != nil {
			return nil, err
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	if timing.FailureProbability > 0 && s.random() < timing.FailureProbability {
		s.logger.Info("simulated failure", zap.String("operation", string(req.Operation)), zap.String("slot", req.Slot))
		return nil, apperrors.NewSimulatedFailure(string(req.Operation))
	}

	if req.Check != nil {
		if err := req.Check(ctx); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Seq:       seq,
		Operation: req.Operation,
		Timestamp: s.now(),
		Payload:   req.Payload,
	}
	if prefix, ok := idPrefixes[req.Operation]; ok {
		res.ID = s.ids.Next(prefix)
	}
	return res, nil
}

func (s *Simulator) acquire(slot string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.slotLocked(slot)
	if st.pending {
		return 0, ErrSlotBusy
	}
	st.latest++
	st.pending = true
	return st.latest, nil
}

// release frees the slot if seq is still the latest and reports staleness.
func (s *Simulator) release(slot string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.slotLocked(slot)
	if st.latest != seq {
		return true
	}
	st.pending = false
	return false
}

func (s *Simulator) slotLocked(slot string) *slotState {
	st, ok := s.slots[slot]
	if !ok {
		st = &slotState{}
		s.slots[slot] = st
	}
	return st
}

func (s *Simulator) record(op Operation, outcome string) {
	s.metrics.RecordSimulation(string(op), outcome)
}

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
