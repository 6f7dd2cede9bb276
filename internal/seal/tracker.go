package seal

import (
	"fmt"
	"time"
)

// Default tracker tuning.
const (
	// DefaultHoldFrames is the rolling window capacity: how many frames a
	// seal must dominate before it is confirmed.
	DefaultHoldFrames = 5
	// DefaultConfidenceThreshold is the minimum prediction confidence;
	// anything below is treated as no detection.
	DefaultConfidenceThreshold = 0.6
	// DefaultSequenceTimeout resets the confirmed sequence after this much
	// idle time.
	DefaultSequenceTimeout = 5 * time.Second
	// DefaultSingleSealDelay is how long a single-seal jutsu match waits
	// before firing, giving longer sequences a chance to complete.
	DefaultSingleSealDelay = 1500 * time.Millisecond
)

// Config holds tracker tuning and the jutsu catalog.
type Config struct {
	HoldFrames          int
	ConfidenceThreshold float64
	SequenceTimeout     time.Duration
	SingleSealDelay     time.Duration
	Catalog             Catalog
}

// DefaultConfig returns a Config with the default tuning and the built-in
// jutsu catalog.
func DefaultConfig() Config {
	return Config{
		HoldFrames:          DefaultHoldFrames,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		SequenceTimeout:     DefaultSequenceTimeout,
		SingleSealDelay:     DefaultSingleSealDelay,
		Catalog:             DefaultCatalog(),
	}
}

// State is the tracker's per-update snapshot. It is freshly constructed on
// every Update call and owned by the caller; the tracker never mutates a
// returned State.
type State struct {
	// CurrentSeal is the stabilized seal for this frame, or None.
	CurrentSeal string
	// CurrentConfidence is this frame's prediction confidence when it agrees
	// with the stable seal, 0 otherwise.
	CurrentConfidence float64
	// ConfirmedSequence is a copy of the seals confirmed since the last
	// timeout or reset.
	ConfirmedSequence []string
	// MatchedJutsu is the most recently matched jutsu, nil if none.
	MatchedJutsu *Jutsu
	// SealJustConfirmed reports whether this update confirmed a new seal.
	SealJustConfirmed bool
	// JutsuJustMatched reports whether this update produced a final match.
	JutsuJustMatched bool
}

// Tracker converts a noisy stream of (seal, confidence) predictions into
// stable confirmations and matches the confirmed sequence against the
// catalog. It is not safe for concurrent use; callers must serialize
// Update and Reset.
type Tracker struct {
	cfg  Config
	stab *stabilizer

	lastConfirmed string
	sequence      []string
	lastSealTime  time.Time

	pendingSingle *Jutsu
	pendingSince  time.Time

	matched *Jutsu

	now func() time.Time
}

// NewTracker creates a Tracker with the given configuration.
// Malformed configuration is rejected eagerly.
func NewTracker(cfg Config) (*Tracker, error) {
	if cfg.HoldFrames <= 0 {
		return nil, fmt.Errorf("hold frames must be positive, got %d", cfg.HoldFrames)
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("confidence threshold must be in [0,1], got %g", cfg.ConfidenceThreshold)
	}
	if cfg.SequenceTimeout < 0 {
		return nil, fmt.Errorf("sequence timeout must not be negative, got %s", cfg.SequenceTimeout)
	}
	if cfg.SingleSealDelay < 0 {
		return nil, fmt.Errorf("single seal delay must not be negative, got %s", cfg.SingleSealDelay)
	}

	return &Tracker{
		cfg:  cfg,
		stab: newStabilizer(cfg.HoldFrames),
		now:  time.Now,
	}, nil
}

// Update processes one frame's prediction and returns the current state.
// Pass None (empty string) for seal when nothing was detected.
func (t *Tracker) Update(seal string, confidence float64) State {
	now := t.now()
	var state State

	// Idle timeout is evaluated before the new observation is processed.
	if len(t.sequence) > 0 && now.Sub(t.lastSealTime) > t.cfg.SequenceTimeout {
		t.sequence = t.sequence[:0]
		t.lastConfirmed = None
		t.pendingSingle = nil
	}

	// Low confidence counts as no detection, before windowing, so noise
	// never contributes a vote.
	if seal != None && confidence < t.cfg.ConfidenceThreshold {
		seal = None
	}

	stable := t.stab.push(seal)
	state.CurrentSeal = stable
	if stable == seal {
		state.CurrentConfidence = confidence
	}

	switch {
	case stable != None && stable != t.lastConfirmed:
		t.lastConfirmed = stable
		t.sequence = append(t.sequence, stable)
		t.lastSealTime = now
		state.SealJustConfirmed = true

		// A new confirmation always invalidates a pending single-seal match.
		t.pendingSingle = nil

		if m := matchJutsu(t.cfg.Catalog, t.sequence); m != nil {
			if len(m.Seals) == 1 {
				t.pendingSingle = m
				t.pendingSince = now
			} else {
				t.matched = m
				state.MatchedJutsu = m
				state.JutsuJustMatched = true
			}
		}

	case stable == None:
		// A gap lets the same seal confirm again afterwards.
		t.lastConfirmed = None
	}

	// A pending single-seal jutsu fires once its delay elapses without a
	// superseding confirmation.
	if t.pendingSingle != nil && now.Sub(t.pendingSince) >= t.cfg.SingleSealDelay {
		t.matched = t.pendingSingle
		state.MatchedJutsu = t.pendingSingle
		state.JutsuJustMatched = true
		t.pendingSingle = nil
	}

	state.ConfirmedSequence = append([]string(nil), t.sequence...)
	if state.MatchedJutsu == nil {
		state.MatchedJutsu = t.matched
	}

	return state
}

// Reset clears all tracking state: window, confirmed sequence, pending
// single-seal match, and the last matched jutsu.
func (t *Tracker) Reset() {
	t.stab.reset()
	t.lastConfirmed = None
	t.sequence = t.sequence[:0]
	t.pendingSingle = nil
	t.matched = nil
}

// Catalog returns the catalog the tracker was configured with.
func (t *Tracker) Catalog() Catalog {
	return t.cfg.Catalog
}
