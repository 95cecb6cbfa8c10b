package cli

import (
	"context"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/core/ports/driving"
)

// setupTestServices swaps the package singletons for populated mocks and
// returns a cleanup that restores the previous values.
func setupTestServices() func() {
	oldNotifier := notifierService
	oldCurator := curatorService
	oldStore := stateStore
	oldTransfer := stateTransfer

	notifierService = &mockNotifier{
		report: domain.RunReport{Collections: 2, Posted: 5},
	}
	curatorService = &mockCurator{
		records: []domain.Record{
			{
				Key:          "ITEM1",
				Title:        "Test Item 1",
				ItemType:     "journalArticle",
				AddedBy:      "avigdor",
				DateAdded:    "2024-05-01T10:00:00Z",
				DateModified: "2024-05-02T10:00:00Z",
				NumChildren:  1,
			},
		},
		notes: []domain.Note{
			{Key: "NOTE1", HTML: "<p>hello</p>", DateModified: "2024-05-02T11:00:00Z"},
		},
		prune: domain.PruneReport{Scanned: 4, Matched: 2, Deleted: 2},
	}
	stateStore = &mockStateStore{
		path: "state.csv",
		rows: []domain.WatermarkRow{
			{CollectionID: "COLL1", LastDate: "2024-05-01T00:00:00Z", Channel: "C1"},
			{CollectionID: "COLL2", LastDate: "2024-04-01T00:00:00Z"},
		},
	}
	stateTransfer = &mockStateTransfer{
		remote: []byte("collectionID,lastDate,channel\n"),
	}

	return func() {
		notifierService = oldNotifier
		curatorService = oldCurator
		stateStore = oldStore
		stateTransfer = oldTransfer
	}
}

// mockNotifier returns a fixed report. DryRun mirrors the request, like the
// real notifier.
type mockNotifier struct {
	report domain.RunReport
	err    error
	opts   []driving.RunOptions
}

func (m *mockNotifier) Run(_ context.Context, opts driving.RunOptions) (domain.RunReport, error) {
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return domain.RunReport{}, m.err
	}
	report := m.report
	report.DryRun = opts.DryRun
	return report, nil
}

// mockCurator serves fixed records and notes and records the queries it saw.
type mockCurator struct {
	records   []domain.Record
	notes     []domain.Note
	prune     domain.PruneReport
	err       error
	queries   []driven.ItemQuery
	pruneOpts []driving.PruneOptions
}

func (m *mockCurator) ListItems(_ context.Context, q driven.ItemQuery) ([]domain.Record, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockCurator) ShowItem(_ context.Context, key string) (domain.Record, []domain.Note, error) {
	if m.err != nil {
		return domain.Record{}, nil, m.err
	}
	record := m.records[0]
	record.Key = key
	return record, m.notes, nil
}

func (m *mockCurator) PruneAttachments(_ context.Context, opts driving.PruneOptions) (domain.PruneReport, error) {
	m.pruneOpts = append(m.pruneOpts, opts)
	if m.err != nil {
		return domain.PruneReport{}, m.err
	}
	report := m.prune
	if opts.DryRun {
		report.Deleted = 0
	}
	return report, nil
}

type mockStateStore struct {
	path    string
	rows    []domain.WatermarkRow
	loadErr error
	saved   [][]domain.WatermarkRow
}

func (m *mockStateStore) Load(_ context.Context) ([]domain.WatermarkRow, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.rows, nil
}

func (m *mockStateStore) Save(_ context.Context, rows []domain.WatermarkRow) error {
	m.saved = append(m.saved, rows)
	return nil
}

func (m *mockStateStore) Path() string { return m.path }

type mockStateTransfer struct {
	remote  []byte
	pullErr error
	pushErr error
	pushed  [][]byte
}

func (m *mockStateTransfer) Pull(_ context.Context) ([]byte, error) {
	if m.pullErr != nil {
		return nil, m.pullErr
	}
	return m.remote, nil
}

func (m *mockStateTransfer) Push(_ context.Context, data []byte) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	m.pushed = append(m.pushed, data)
	return nil
}
