// Package cache holds the parsed directory in memory and coordinates
// reloads from the configured source. Reads revalidate the source's
// version stamp and fall back to the cached snapshot when the source
// is unreachable.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mferrari98/cont-portal/internal/ctxutil"
	"github.com/mferrari98/cont-portal/internal/directory"
	domerrors "github.com/mferrari98/cont-portal/internal/errors"
	"github.com/mferrari98/cont-portal/internal/logger"
	"github.com/mferrari98/cont-portal/internal/metrics"
	"github.com/mferrari98/cont-portal/internal/source"
	"github.com/mferrari98/cont-portal/internal/timeouts"
)

// reloadKey is the single singleflight key. There is one directory, so
// every concurrent reload coalesces onto one fetch and parse.
const reloadKey = "reload"

// Snapshot is an immutable parsed directory plus its provenance.
type Snapshot struct {
	Records  []directory.PersonnelRecord
	Mapping  directory.HeaderMapping
	Stamp    string
	LoadedAt time.Time
}

// Manager serves the current snapshot and refreshes it from the source.
type Manager struct {
	src     source.Source
	logger  *logger.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu       sync.RWMutex
	snapshot *Snapshot

	refreshCancel context.CancelFunc
	refreshDone   chan struct{}
}

// New creates a new snapshot manager for the given source.
func New(src source.Source, log *logger.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		src:     src,
		logger:  log,
		metrics: m,
	}
}

// Current returns the cached snapshot without touching the source.
// It is nil until the first successful load.
func (m *Manager) Current() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Snapshot returns a snapshot that is current with respect to the
// source's version stamp. With a cached snapshot in hand it checks the
// stamp first and reloads only on change; when the check or the reload
// fails, the cached snapshot is served as-is. Without one it loads and
// surfaces the load error.
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	current := m.Current()
	if current == nil {
		snap, err := m.load(ctx)
		if err != nil {
			m.metrics.RecordCacheRead("error")
			return nil, err
		}
		m.metrics.RecordCacheRead("reload")
		return snap, nil
	}

	stamp, err := m.src.Stamp(ctx)
	if err != nil {
		m.logger.Warn("Stamp check failed, serving cached snapshot", "error", err)
		m.metrics.RecordCacheRead("stale")
		return current, nil
	}
	if stamp != "" && stamp == current.Stamp {
		m.metrics.RecordCacheRead("hit")
		return current, nil
	}

	snap, err := m.load(ctx)
	if err != nil {
		m.logger.Warn("Reload failed, serving cached snapshot",
			"error", err,
			"stamp", current.Stamp)
		m.metrics.RecordCacheRead("stale")
		return current, nil
	}
	m.metrics.RecordCacheRead("reload")
	return snap, nil
}

// Reload fetches and parses the directory unconditionally, replacing
// the cached snapshot on success. Concurrent calls share one execution.
func (m *Manager) Reload(ctx context.Context) (*Snapshot, error) {
	return m.load(ctx)
}

func (m *Manager) load(ctx context.Context) (*Snapshot, error) {
	var executed bool
	v, err, shared := m.group.Do(reloadKey, func() (interface{}, error) {
		executed = true

		// Check context before executing
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// The result is shared with every coalesced caller, so the
		// fetch must not die with the first caller that disconnects.
		loadCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), timeouts.WarmLoad)
		defer cancel()

		return m.fetchAndParse(loadCtx)
	})
	if shared && !executed {
		m.metrics.RecordSingleflightDedup()
	}
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// fetchAndParse runs one full load: fetch bytes, decode the workbook,
// extract records and swap the snapshot in.
func (m *Manager) fetchAndParse(ctx context.Context) (snap *Snapshot, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.metrics.RecordReload(status, time.Since(start).Seconds())
	}()

	payload, stamp, err := m.src.Fetch(ctx)
	fetchSeconds := time.Since(start).Seconds()
	if err != nil {
		m.metrics.RecordSourceFetch(m.src.Name(), domerrors.Kind(err), 0, fetchSeconds)
		return nil, err
	}
	m.metrics.RecordSourceFetch(m.src.Name(), "success", len(payload), fetchSeconds)

	grid, err := directory.DecodeGrid(payload)
	if err != nil {
		return nil, err
	}

	records, mapping := directory.BuildRecords(grid, directory.DefaultLayout())
	if len(records) == 0 {
		return nil, domerrors.ErrDirectoryEmpty
	}

	snap = &Snapshot{
		Records:  records,
		Mapping:  mapping,
		Stamp:    stamp,
		LoadedAt: time.Now(),
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	m.metrics.RecordDirectoryLoaded(len(records))
	m.logger.Info("Directory loaded",
		"records", len(records),
		"stamp", stamp,
		"header_row", mapping.HeaderRow,
		"duration_ms", time.Since(start).Milliseconds())

	return snap, nil
}

// StartRefresh starts background revalidation at the given interval.
// When the source's stamp changes, the directory is reloaded and the
// snapshot hot-swapped.
func (m *Manager) StartRefresh(ctx context.Context, interval time.Duration) {
	refreshCtx, cancel := context.WithCancel(ctx)
	m.refreshCancel = cancel
	m.refreshDone = make(chan struct{})

	go func() {
		defer close(m.refreshDone)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-refreshCtx.Done():
				m.logger.Info("Directory refresh stopped")
				return
			case <-ticker.C:
				m.refreshOnce(refreshCtx)
			}
		}
	}()

	m.logger.Info("Directory refresh started", "interval", interval)
}

// refreshOnce revalidates the stamp and reloads when it changed.
func (m *Manager) refreshOnce(ctx context.Context) {
	current := m.Current()

	stamp, err := m.src.Stamp(ctx)
	if err != nil {
		m.logger.Warn("Refresh stamp check failed", "error", err)
		return
	}
	if current != nil && stamp != "" && stamp == current.Stamp {
		return
	}

	if _, err := m.load(ctx); err != nil {
		// Keep whatever snapshot we have.
		m.logger.Warn("Background refresh failed", "error", err)
	}
}

// StopRefresh stops the background refresh goroutine.
func (m *Manager) StopRefresh() {
	if m.refreshCancel != nil {
		m.refreshCancel()
		<-m.refreshDone
	}
}
