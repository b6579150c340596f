package threadpaint

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics collects operational counters for a painter and can publish them
// through expvar, which serves them at /debug/vars when an HTTP server runs.
//
// Safe for concurrent use.
type Metrics struct {
	starts        atomic.Int64
	stops         atomic.Int64
	restarts      atomic.Int64
	configReloads atomic.Int64
	commits       atomic.Int64
	undos         atomic.Int64
	redos         atomic.Int64
	evictions     atomic.Int64
	canvasResets  atomic.Int64
	frames        atomic.Int64
	errorsTotal   atomic.Int64
	eventsEmitted atomic.Int64

	commitLatency  latency
	undoLatency    latency
	composeLatency latency

	running atomic.Int32

	registered atomic.Bool
}

// latency accumulates durations for an average.
type latency struct {
	ns    atomic.Int64
	count atomic.Int64
}

func (l *latency) record(d time.Duration) {
	l.ns.Add(d.Nanoseconds())
	l.count.Add(1)
}

func (l *latency) avg() time.Duration {
	n := l.count.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(l.ns.Load() / n)
}

func (l *latency) avgMillis() any {
	return float64(l.avg()) / float64(time.Millisecond)
}

func (l *latency) reset() {
	l.ns.Store(0)
	l.count.Store(0)
}

// NewMetrics creates an unregistered Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics under threadpaint_* names.
// Safe to call multiple times; only the first call publishes. expvar
// names are process-global, so register at most one Metrics per process.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	counters := map[string]*atomic.Int64{
		"threadpaint_starts_total":         &m.starts,
		"threadpaint_stops_total":          &m.stops,
		"threadpaint_restarts_total":       &m.restarts,
		"threadpaint_config_reloads_total": &m.configReloads,
		"threadpaint_commits_total":        &m.commits,
		"threadpaint_undos_total":          &m.undos,
		"threadpaint_redos_total":          &m.redos,
		"threadpaint_evictions_total":      &m.evictions,
		"threadpaint_canvas_resets_total":  &m.canvasResets,
		"threadpaint_frames_total":         &m.frames,
		"threadpaint_errors_total":         &m.errorsTotal,
		"threadpaint_events_emitted_total": &m.eventsEmitted,
	}
	for name, c := range counters {
		expvar.Publish(name, expvar.Func(func() any { return c.Load() }))
	}

	expvar.Publish("threadpaint_running", expvar.Func(func() any { return m.running.Load() }))
	expvar.Publish("threadpaint_commit_latency_avg_ms", expvar.Func(m.commitLatency.avgMillis))
	expvar.Publish("threadpaint_undo_latency_avg_ms", expvar.Func(m.undoLatency.avgMillis))
	expvar.Publish("threadpaint_compose_latency_avg_ms", expvar.Func(m.composeLatency.avgMillis))
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Starts        int64
	Stops         int64
	Restarts      int64
	ConfigReloads int64
	Commits       int64
	Undos         int64
	Redos         int64
	Evictions     int64
	CanvasResets  int64
	Frames        int64
	ErrorsTotal   int64
	EventsEmitted int64

	Running bool

	CommitLatencyAvg  time.Duration
	UndoLatencyAvg    time.Duration
	ComposeLatencyAvg time.Duration
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Starts:        m.starts.Load(),
		Stops:         m.stops.Load(),
		Restarts:      m.restarts.Load(),
		ConfigReloads: m.configReloads.Load(),
		Commits:       m.commits.Load(),
		Undos:         m.undos.Load(),
		Redos:         m.redos.Load(),
		Evictions:     m.evictions.Load(),
		CanvasResets:  m.canvasResets.Load(),
		Frames:        m.frames.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		EventsEmitted: m.eventsEmitted.Load(),

		Running: m.running.Load() > 0,

		CommitLatencyAvg:  m.commitLatency.avg(),
		UndoLatencyAvg:    m.undoLatency.avg(),
		ComposeLatencyAvg: m.composeLatency.avg(),
	}
}

// IncrementStarts records a start.
func (m *Metrics) IncrementStarts() { m.starts.Add(1) }

// IncrementStops records a stop.
func (m *Metrics) IncrementStops() { m.stops.Add(1) }

// IncrementRestarts records a restart.
func (m *Metrics) IncrementRestarts() { m.restarts.Add(1) }

// IncrementConfigReloads records a configuration reload.
func (m *Metrics) IncrementConfigReloads() { m.configReloads.Add(1) }

// IncrementEvictions records n commands folded into the baseline.
func (m *Metrics) IncrementEvictions(n int) { m.evictions.Add(int64(n)) }

// IncrementCanvasResets records a canvas replacement.
func (m *Metrics) IncrementCanvasResets() { m.canvasResets.Add(1) }

// IncrementErrors records an error.
func (m *Metrics) IncrementErrors() { m.errorsTotal.Add(1) }

// IncrementEventsEmitted records an emitted event.
func (m *Metrics) IncrementEventsEmitted() { m.eventsEmitted.Add(1) }

// SetRunning updates the running gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.running.Store(1)
	} else {
		m.running.Store(0)
	}
}

// RecordCommit records a commit and the time it held the canvas.
func (m *Metrics) RecordCommit(d time.Duration) {
	m.commits.Add(1)
	m.commitLatency.record(d)
}

// RecordUndo records an undo and the time its replay took.
func (m *Metrics) RecordUndo(d time.Duration) {
	m.undos.Add(1)
	m.undoLatency.record(d)
}

// RecordRedo records a redo.
func (m *Metrics) RecordRedo() { m.redos.Add(1) }

// RecordFrame records a composed frame and the time it held the canvas.
func (m *Metrics) RecordFrame(d time.Duration) {
	m.frames.Add(1)
	m.composeLatency.record(d)
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Int64{
		&m.starts, &m.stops, &m.restarts, &m.configReloads,
		&m.commits, &m.undos, &m.redos, &m.evictions, &m.canvasResets,
		&m.frames, &m.errorsTotal, &m.eventsEmitted,
	} {
		c.Store(0)
	}
	m.commitLatency.reset()
	m.undoLatency.reset()
	m.composeLatency.reset()
	m.running.Store(0)
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the process-wide Metrics used when Options.Metrics
// is nil.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
