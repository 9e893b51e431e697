package pacing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Preset names accepted by FromPreset and Build.
const (
	// PresetStealth spaces probes ~1s apart with jitter to reduce
	// detectability.
	PresetStealth = "stealth"

	// PresetNormal is the default cadence (~20 probes/s).
	PresetNormal = "normal"

	// PresetAggressive is the fastest limited cadence (~100 probes/s).
	PresetAggressive = "aggressive"

	// PresetNone disables rate limiting entirely.
	PresetNone = "none"
)

// SafetyPortLimit is the largest port span allowed to run with the
// "none" preset. Spans above this trigger the aggressive preset
// instead. The boundary is inclusive: exactly SafetyPortLimit ports
// remain unrestricted.
const SafetyPortLimit = 1000

// Jitter multiplier bounds. When jitter is enabled each wait samples a
// multiplier uniformly from [jitterMin, jitterMax].
const (
	jitterMin = 0.5
	jitterMax = 2.0
)

// ErrUnknownPreset is returned by FromPreset and Build for an
// unrecognized preset name. This is a configuration error and is
// reported synchronously at construction time, never deferred to the
// first probe.
var ErrUnknownPreset = errors.New("unknown pacing preset")

// Pacer enforces a delay before each probe attempt.
//
// Design decision: the pacer keeps a single "next allowed attempt"
// timestamp behind a mutex rather than having each caller sleep
// independently. With one sequential caller this behaves exactly like
// a plain sleep; with concurrent workers it becomes a rate cap on
// attempts, which is the invariant the probers rely on.
type Pacer struct {
	delay  time.Duration
	jitter bool

	mu   sync.Mutex
	next time.Time
}

// New creates a Pacer with the given base delay. A non-positive delay
// produces an unrestricted pacer whose Wait returns immediately.
func New(delay time.Duration, jitter bool) *Pacer {
	return &Pacer{delay: delay, jitter: jitter}
}

// Delay returns the configured base delay. Zero means unrestricted.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Jitter reports whether delay randomization is enabled.
func (p *Pacer) Jitter() bool {
	return p.jitter
}

// Wait blocks until the next probe attempt is allowed. It never
// returns an error; cancelling the context ends the wait early so an
// interrupted scan stops issuing probes without delay.
func (p *Pacer) Wait(ctx context.Context) {
	if p.delay <= 0 {
		return
	}

	p.mu.Lock()
	now := time.Now()
	if p.next.Before(now) {
		p.next = now
	}
	p.next = p.next.Add(p.interval())
	wake := p.next
	p.mu.Unlock()

	d := time.Until(wake)
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// interval returns the delay for one attempt, jittered when enabled.
func (p *Pacer) interval() time.Duration {
	if !p.jitter {
		return p.delay
	}
	multiplier := jitterMin + rand.Float64()*(jitterMax-jitterMin)
	return time.Duration(float64(p.delay) * multiplier)
}

// String describes the pacer for logging.
func (p *Pacer) String() string {
	if p.delay <= 0 {
		return "Pacer(unrestricted)"
	}
	if p.jitter {
		return fmt.Sprintf("Pacer(delay=%s, jitter=[%.1fx-%.1fx])", p.delay, jitterMin, jitterMax)
	}
	return fmt.Sprintf("Pacer(delay=%s)", p.delay)
}

// FromPreset creates a Pacer for a named preset. The "none" preset
// yields an unrestricted pacer (delay zero) so callers never need a
// nil check.
func FromPreset(name string) (*Pacer, error) {
	switch name {
	case PresetStealth:
		return New(time.Second, true), nil
	case PresetNormal:
		return New(50*time.Millisecond, false), nil
	case PresetAggressive:
		return New(10*time.Millisecond, false), nil
	case PresetNone:
		return New(0, false), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s, %s, %s, %s)",
			ErrUnknownPreset, name, PresetStealth, PresetNormal, PresetAggressive, PresetNone)
	}
}

// Options captures the operator's pacing request as provided by the
// CLI layer. Immutable after construction.
type Options struct {
	// Preset is the named preset to use; empty means PresetNormal.
	Preset string

	// Delay is an explicit delay override. It takes precedence over
	// any preset and is exempt from the safety policy.
	Delay time.Duration

	// DelaySet marks Delay as explicitly provided, so a zero override
	// ("really unrestricted") is distinguishable from no override.
	DelaySet bool
}

// Build resolves pacing options into the Pacer shared by one
// orchestrator run.
//
// Safety policy: requesting the "none" preset for a span larger than
// SafetyPortLimit silently substitutes the aggressive preset and logs
// a warning naming the port count. An explicit delay override always
// wins and is never substituted.
func Build(opts Options, portCount int, logger *slog.Logger) (*Pacer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.DelaySet {
		logger.Debug("pacing delay override in effect", "delay", opts.Delay)
		return New(opts.Delay, false), nil
	}

	preset := opts.Preset
	if preset == "" {
		preset = PresetNormal
	}

	if preset == PresetNone && portCount > SafetyPortLimit {
		logger.Warn("Large scan detected, enforcing minimal rate limiting",
			"ports", portCount,
			"limit", SafetyPortLimit,
			"preset", PresetAggressive,
		)
		preset = PresetAggressive
	}

	pacer, err := FromPreset(preset)
	if err != nil {
		return nil, err
	}

	if pacer.Delay() == 0 {
		logger.Warn("rate limiting disabled; this may overload the target and is easily detectable")
	} else {
		logger.Debug("pacer configured", "pacer", pacer.String())
	}
	return pacer, nil
}
