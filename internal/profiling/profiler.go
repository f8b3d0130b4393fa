// Package profiling records per-turn stage timings as JSON lines.
package profiling

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Level determines how detailed the profiling is
type Level string

const (
	LevelOff      Level = "off"
	LevelMinimal  Level = "minimal"  // respond stage only
	LevelDetailed Level = "detailed" // also input waits and output writes
)

// ParseLevel maps an environment value to a Level; empty means off
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "", LevelOff:
		return LevelOff, nil
	case LevelMinimal, LevelDetailed:
		return Level(s), nil
	default:
		return LevelOff, fmt.Errorf("unknown profiling level %q", s)
	}
}

// TurnTiming is a single timing measurement
type TurnTiming struct {
	Turn       int            `json:"turn"`
	Stage      string         `json:"stage"`
	StartTime  time.Time      `json:"start_time"`
	DurationMs float64        `json:"duration_ms"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Profiler appends timings to a JSONL file. The zero value and Off() are
// disabled profilers that record nothing.
type Profiler struct {
	level   Level
	mu      sync.Mutex
	logFile *os.File
	encoder *json.Encoder
}

// Off returns a disabled profiler
func Off() *Profiler {
	return &Profiler{level: LevelOff}
}

// Open creates a profiler writing to logPath. LevelOff opens nothing.
func Open(level Level, logPath string) (*Profiler, error) {
	p := &Profiler{level: level}
	if level == LevelOff {
		return p, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open profiling log: %w", err)
	}
	p.logFile = f
	p.encoder = json.NewEncoder(f)
	return p, nil
}

// Close closes the log file
func (p *Profiler) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.logFile != nil {
		err := p.logFile.Close()
		p.logFile, p.encoder = nil, nil
		return err
	}
	return nil
}

// Start begins timing a stage at the given level and returns a function
// to call when done
func (p *Profiler) Start(level Level, turn int, stage string) func() {
	return p.StartWithMetadata(level, turn, stage, nil)
}

// StartWithMetadata is Start with extra fields attached to the record
func (p *Profiler) StartWithMetadata(level Level, turn int, stage string, metadata map[string]any) func() {
	if !p.ShouldProfile(level) {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.Record(turn, stage, time.Since(start), metadata)
	}
}

// Record writes one timing
func (p *Profiler) Record(turn int, stage string, duration time.Duration, metadata map[string]any) {
	if !p.IsEnabled() {
		return
	}

	timing := TurnTiming{
		Turn:       turn,
		Stage:      stage,
		StartTime:  time.Now().Add(-duration),
		DurationMs: float64(duration.Nanoseconds()) / 1e6,
		Metadata:   metadata,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.encoder != nil {
		_ = p.encoder.Encode(timing)
	}
}

// ShouldProfile reports whether stages at level are recorded
func (p *Profiler) ShouldProfile(level Level) bool {
	if p == nil {
		return false
	}
	switch p.level {
	case LevelDetailed:
		return level == LevelMinimal || level == LevelDetailed
	case LevelMinimal:
		return level == LevelMinimal
	default:
		return false
	}
}

// IsEnabled returns true if profiling is on
func (p *Profiler) IsEnabled() bool {
	return p != nil && p.level != LevelOff && p.level != ""
}

// Level returns the configured level
func (p *Profiler) Level() Level {
	return p.level
}
