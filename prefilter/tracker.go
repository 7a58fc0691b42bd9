package prefilter

// Tracker monitors prefilter effectiveness during one search and disables
// it when too many candidates fail verification.
//
// A prefilter that keeps finding candidates the engine rejects (e.g. a
// literal "a" in mostly-"a" text) costs more than it saves. After a warmup
// period the tracker compares confirmed matches to candidates every
// CheckInterval candidates and deactivates itself below MinEfficiency.
// Once inactive, Find reports every position as a candidate.
//
// A Tracker is not safe for concurrent use; the engine keeps one per
// pooled search state.
type Tracker struct {
	inner Prefilter

	candidates uint64 // Total candidate positions found
	confirms   uint64 // Candidates that turned into matches

	checkInterval  uint64  // Check effectiveness every N candidates
	minEfficiency  float64 // Minimum required efficiency (0.0 to 1.0)
	warmupPeriod   uint64  // Don't disable until this many candidates
	lastCheckpoint uint64  // Candidates at last checkpoint

	active bool
}

// TrackerConfig configures effectiveness tracking.
type TrackerConfig struct {
	// CheckInterval is how often (in candidates) efficiency is checked.
	CheckInterval uint64

	// MinEfficiency is the minimum ratio of confirms to candidates.
	MinEfficiency float64

	// WarmupPeriod is the number of candidates before the first check.
	WarmupPeriod uint64
}

// DefaultTrackerConfig returns the default tracking configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CheckInterval: 64,
		MinEfficiency: 0.1,
		WarmupPeriod:  128,
	}
}

// NewTracker wraps inner with the default configuration. It returns nil if
// inner is nil.
func NewTracker(inner Prefilter) *Tracker {
	return NewTrackerWithConfig(inner, DefaultTrackerConfig())
}

// NewTrackerWithConfig wraps inner with the given configuration.
func NewTrackerWithConfig(inner Prefilter, config TrackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	return &Tracker{
		inner:         inner,
		checkInterval: config.CheckInterval,
		minEfficiency: config.MinEfficiency,
		warmupPeriod:  config.WarmupPeriod,
		active:        true,
	}
}

// Find returns the next candidate at or after start. While inactive it
// returns start itself (or -1 past the end).
func (t *Tracker) Find(haystack []byte, start int) int {
	if !t.active {
		if start < 0 || start > len(haystack) {
			return -1
		}
		return start
	}
	pos := t.inner.Find(haystack, start)
	if pos >= 0 {
		t.candidates++
		t.checkEffectiveness()
	}
	return pos
}

// ConfirmMatch records that the last candidate was a real match.
func (t *Tracker) ConfirmMatch() {
	t.confirms++
}

// IsActive reports whether the prefilter is still in use.
func (t *Tracker) IsActive() bool {
	return t.active
}

// IsComplete implements Prefilter.
func (t *Tracker) IsComplete() bool {
	return t.active && t.inner.IsComplete()
}

// LiteralLen implements Prefilter.
func (t *Tracker) LiteralLen() int {
	if !t.active {
		return 0
	}
	return t.inner.LiteralLen()
}

func (t *Tracker) String() string {
	return "tracked " + t.inner.String()
}

// Stats returns the tracking counters.
func (t *Tracker) Stats() (candidates, confirms uint64, efficiency float64, active bool) {
	candidates = t.candidates
	confirms = t.confirms
	if candidates > 0 {
		efficiency = float64(confirms) / float64(candidates)
	}
	active = t.active
	return
}

// Reset clears the counters and reactivates the prefilter.
func (t *Tracker) Reset() {
	t.candidates = 0
	t.confirms = 0
	t.lastCheckpoint = 0
	t.active = true
}

// Inner returns the wrapped prefilter.
func (t *Tracker) Inner() Prefilter {
	return t.inner
}

func (t *Tracker) checkEffectiveness() {
	if t.candidates < t.warmupPeriod {
		return
	}
	if t.candidates-t.lastCheckpoint < t.checkInterval {
		return
	}
	t.lastCheckpoint = t.candidates

	if float64(t.confirms)/float64(t.candidates) < t.minEfficiency {
		t.active = false
	}
}
