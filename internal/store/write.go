package store

import (
	"context"
	"fmt"

	"github.com/harlowe/gaugeline/internal/engine"
)

// WriteRun persists a completed run and all its child rows in one
// transaction. Uses ON CONFLICT(run_token) DO NOTHING for idempotency:
// re-writing a token that already exists is a silent no-op and the child
// tables are left untouched, so a partial duplicate can never form.
func (s *Store) WriteRun(ctx context.Context, name string, result *engine.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_token, name, final_frame, final_gauge_points, log_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_token) DO NOTHING
	`,
		result.RunToken,
		name,
		result.FinalFrame,
		result.FinalGaugePoints,
		result.LogHash,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if inserted == 0 {
		// Token already stored; nothing else to do.
		return nil
	}

	for idx, ev := range result.Events {
		annotations, err := marshalAnnotations(ev.Annotations)
		if err != nil {
			return fmt.Errorf("write run: event %d: %w", idx, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events
			(run_token, idx, frame, kind, name, row_idx, cost_points,
			 gauge_points, overflow_points, rate, participants, annotations)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			result.RunToken, idx, ev.Frame, string(ev.Kind), ev.Name, ev.Row,
			ev.CostPoints, ev.GaugePoints, ev.OverflowPoints, ev.Rate,
			ev.Participants, annotations,
		)
		if err != nil {
			return fmt.Errorf("write run: event %d: %w", idx, err)
		}
	}

	for idx, iv := range result.Intervals {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO intervals
			(run_token, idx, source, name, scope, target, start_frame, end_frame, magnitude, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			result.RunToken, idx, iv.Source, iv.Name, string(iv.Scope),
			iv.Target, iv.Start, iv.End, iv.Magnitude, iv.Active,
		)
		if err != nil {
			return fmt.Errorf("write run: interval %d: %w", idx, err)
		}
	}

	for idx, w := range result.Windows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO windows (run_token, idx, start_frame, end_frame)
			VALUES (?, ?, ?, ?)
		`,
			result.RunToken, idx, w.Start, w.End,
		)
		if err != nil {
			return fmt.Errorf("write run: window %d: %w", idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
