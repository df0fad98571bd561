package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harlowe/gaugeline/internal/catalog"
	"github.com/harlowe/gaugeline/internal/engine"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// ErrRunNotFound is returned by ReadRun for an unknown run token.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is the scalar portion of a stored run.
type RunSummary struct {
	RunToken         string
	Name             string
	FinalFrame       int
	FinalGaugePoints int64
	LogHash          string
	CreatedAt        time.Time
}

// RunRecord is a fully reconstructed stored run.
type RunRecord struct {
	RunSummary

	Events    []timeline.Event
	Intervals []engine.Interval
	Windows   []engine.Window
}

// ListRuns returns summaries of every stored run, newest first; ties on
// creation time break on the token so the order stays deterministic.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, name, final_frame, final_gauge_points, log_hash, created_at
		FROM runs
		ORDER BY created_at DESC, run_token COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// ReadRun reconstructs one stored run, child rows in their original order.
func (s *Store) ReadRun(ctx context.Context, runToken string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_token, name, final_frame, final_gauge_points, log_hash, created_at
		FROM runs
		WHERE run_token = ?
	`, runToken)

	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runToken)
	}
	if err != nil {
		return nil, err
	}

	record := &RunRecord{RunSummary: sum}
	if record.Events, err = s.readEvents(ctx, runToken); err != nil {
		return nil, err
	}
	if record.Intervals, err = s.readIntervals(ctx, runToken); err != nil {
		return nil, err
	}
	if record.Windows, err = s.readWindows(ctx, runToken); err != nil {
		return nil, err
	}
	return record, nil
}

// VerifyRun recomputes the canonical hash of a stored run's event log and
// checks it against the hash recorded at write time. A mismatch means the
// rows were altered after the fact.
func (s *Store) VerifyRun(ctx context.Context, runToken string) error {
	record, err := s.ReadRun(ctx, runToken)
	if err != nil {
		return err
	}
	hash, err := timeline.LogHash(record.Events)
	if err != nil {
		return fmt.Errorf("verify run: %w", err)
	}
	if hash != record.LogHash {
		return fmt.Errorf("verify run %s: stored hash %s, recomputed %s",
			runToken, record.LogHash, hash)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (RunSummary, error) {
	var sum RunSummary
	var created int64
	err := row.Scan(&sum.RunToken, &sum.Name, &sum.FinalFrame,
		&sum.FinalGaugePoints, &sum.LogHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sum, err
		}
		return sum, fmt.Errorf("scan run: %w", err)
	}
	sum.CreatedAt = time.Unix(created, 0).UTC()
	return sum, nil
}

func (s *Store) readEvents(ctx context.Context, runToken string) ([]timeline.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, kind, name, row_idx, cost_points, gauge_points,
		       overflow_points, rate, participants, annotations
		FROM events
		WHERE run_token = ?
		ORDER BY idx ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		var ev timeline.Event
		var kind, annotations string
		err := rows.Scan(&ev.Frame, &kind, &ev.Name, &ev.Row, &ev.CostPoints,
			&ev.GaugePoints, &ev.OverflowPoints, &ev.Rate, &ev.Participants,
			&annotations)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = timeline.EventKind(kind)
		if ev.Annotations, err = unmarshalAnnotations(annotations); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *Store) readIntervals(ctx context.Context, runToken string) ([]engine.Interval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, name, scope, target, start_frame, end_frame, magnitude, active
		FROM intervals
		WHERE run_token = ?
		ORDER BY idx ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("query intervals: %w", err)
	}
	defer rows.Close()

	var intervals []engine.Interval
	for rows.Next() {
		var iv engine.Interval
		var scope string
		err := rows.Scan(&iv.Source, &iv.Name, &scope, &iv.Target,
			&iv.Start, &iv.End, &iv.Magnitude, &iv.Active)
		if err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		iv.Scope = catalog.ScopeKind(scope)
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals: %w", err)
	}
	return intervals, nil
}

func (s *Store) readWindows(ctx context.Context, runToken string) ([]engine.Window, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT start_frame, end_frame
		FROM windows
		WHERE run_token = ?
		ORDER BY idx ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("query windows: %w", err)
	}
	defer rows.Close()

	var windows []engine.Window
	for rows.Next() {
		var w engine.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate windows: %w", err)
	}
	return windows, nil
}
