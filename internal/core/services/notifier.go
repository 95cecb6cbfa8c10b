package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/core/ports/driving"
	"github.com/zotcast/zotcast/internal/logx"
)

// Ensure Notifier implements the interface.
var _ driving.Notifier = (*Notifier)(nil)

// Notifier drives one full pipeline pass: load state, then per collection
// row detect, render, dispatch and recompute the watermark, and finally
// rewrite the state file once. Rows run sequentially in file order;
// ordering and rate control depend on there being no concurrency here.
type Notifier struct {
	detector   *Detector
	formatter  *Formatter
	dispatcher *Dispatcher
	state      driven.StateStore
	resolver   driven.MentionResolver
	log        logx.Logger

	// now is stubbed in tests to pin header timestamps.
	now func() time.Time
}

// NewNotifier wires the pipeline driver. resolver may be nil when mention
// substitution is disabled.
func NewNotifier(detector *Detector, formatter *Formatter, dispatcher *Dispatcher, state driven.StateStore, resolver driven.MentionResolver, log logx.Logger) *Notifier {
	return &Notifier{
		detector:   detector,
		formatter:  formatter,
		dispatcher: dispatcher,
		state:      state,
		resolver:   resolver,
		log:        log,
		now:        time.Now,
	}
}

// Run executes one sequential pass over all state rows. Detection and
// state failures abort the run; delivery failures are absorbed into the
// report and never stop watermark recomputation.
func (n *Notifier) Run(ctx context.Context, opts driving.RunOptions) (domain.RunReport, error) {
	report := domain.RunReport{RunID: uuid.New().String(), DryRun: opts.DryRun}
	log := n.log.With(logx.String("run_id", report.RunID))

	rows, err := n.state.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load state: %w", err)
	}

	// Parse every watermark up front: one malformed row poisons the whole
	// run before anything is delivered.
	sinces := make([]time.Time, len(rows))
	for i := range rows {
		t, err := rows[i].Since()
		if err != nil {
			return report, err
		}
		sinces[i] = t
	}

	if n.resolver != nil {
		if err := n.resolver.Load(ctx); err != nil {
			log.Warn("mention directory unavailable, mentions stay verbatim", logx.Err(err))
		}
	}

	for i := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		changes, err := n.detector.Changes(ctx, rows[i].CollectionID, sinces[i])
		if err != nil {
			return report, fmt.Errorf("detect changes in %s: %w", rows[i].CollectionID, err)
		}
		report.Collections++
		log.Info("collection scanned",
			logx.String("collection", rows[i].CollectionID),
			logx.String("channel", rows[i].Channel),
			logx.Int("changes", len(changes)))

		msgs := make([]domain.RenderedMessage, 0, len(changes))
		for j := range changes {
			m, err := n.formatter.Render(ctx, changes[j])
			if err != nil {
				return report, fmt.Errorf("render record %s: %w", changes[j].Record.Key, err)
			}
			msgs = append(msgs, m)
		}

		header := n.formatter.Header(len(changes), n.now(), sinces[i])

		posted, failed, err := n.dispatcher.Dispatch(ctx, rows[i], header, msgs, opts.DryRun)
		report.Posted += posted
		report.Failed += failed
		if err != nil {
			return report, err
		}

		// The watermark is a "seen" marker, not a "delivered" one: it
		// advances to the newest triggering date attempted, regardless
		// of delivery outcome.
		latest := sinces[i]
		for j := range changes {
			if changes[j].TriggeringDate.After(latest) {
				latest = changes[j].TriggeringDate
			}
		}
		if latest.After(sinces[i]) {
			rows[i].LastDate = domain.FormatTime(latest)
		}
	}

	if opts.DryRun {
		log.Info("dry run, state file untouched", logx.String("path", n.state.Path()))
		return report, nil
	}
	if err := n.state.Save(ctx, rows); err != nil {
		return report, fmt.Errorf("save state: %w", err)
	}

	log.Info("run complete",
		logx.Int("collections", report.Collections),
		logx.Int("posted", report.Posted),
		logx.Int("failed", report.Failed))

	return report, nil
}
