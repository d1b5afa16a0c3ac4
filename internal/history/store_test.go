// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/copy-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{HistoryDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAttempt(ordinal int, composite float64) *types.GenerationAttempt {
	return &types.GenerationAttempt{
		SessionID:    "s-1",
		Subject:      "torque-wrench-nx",
		SubjectClass: "metal",
		Component:    "description",
		Domain:       "catalog",
		Ordinal:      ordinal,
		Parameters:   types.DefaultParameters(),
		Text:         "The wrench clicks at the set torque.",
		Score: types.QualityScore{
			Pattern:    types.Measured(80),
			Structural: types.Measured(60),
			Composite:  composite,
			Weights:    types.DefaultWeights(),
		},
		Usage: types.GeneratorUsage{InputTokens: 120, OutputTokens: 80},
	}
}

func TestAppendAndQueryRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAttempt(1, 71.4)
	a.Parameters.EnrichKeywords = true
	if err := s.AppendAttempt(ctx, a); err != nil {
		t.Fatalf("AppendAttempt: %v", err)
	}
	if a.ID == 0 {
		t.Fatal("AppendAttempt must assign an ID")
	}

	got, err := s.Attempts(ctx, QueryOptions{SubjectClass: "metal", Component: "description"})
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	r := got[0]
	if r.ID != a.ID || r.Subject != a.Subject || r.Text != a.Text {
		t.Errorf("roundtrip mismatch: %+v", r)
	}
	if r.Parameters != a.Parameters {
		t.Errorf("parameters mismatch: got %+v, want %+v", r.Parameters, a.Parameters)
	}
	if r.Score.Composite != 71.4 || !r.Score.Pattern.Available || r.Score.Voice.Available {
		t.Errorf("score mismatch: %+v", r.Score)
	}
	if r.Usage != a.Usage {
		t.Errorf("usage mismatch: %+v", r.Usage)
	}
}

func TestQueryFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := sampleAttempt(1, 50)
	old.CreatedAt = time.Now().Add(-48 * time.Hour).UTC()
	mustAppend(t, s, old)

	recent := sampleAttempt(2, 60)
	mustAppend(t, s, recent)

	other := sampleAttempt(1, 70)
	other.SubjectClass = "wood"
	mustAppend(t, s, other)

	failed := sampleAttempt(3, 0)
	failed.GeneratorFailed = true
	mustAppend(t, s, failed)

	tests := []struct {
		name string
		opts QueryOptions
		want int
	}{
		{"by class", QueryOptions{SubjectClass: "metal"}, 2},
		{"by class including failed", QueryOptions{SubjectClass: "metal", IncludeFailed: true}, 3},
		{"time window", QueryOptions{Since: time.Now().Add(-time.Hour)}, 2},
		{"limit", QueryOptions{Limit: 1}, 1},
		{"no filter", QueryOptions{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Attempts(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Attempts: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestIssuesRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	is := &types.ValidationIssue{
		Subject:   "torque-wrench-nx",
		Component: "description",
		Domain:    "catalog",
		Category:  types.IssueLanguageMismatch,
		Message:   "text detected as German",
		Severity:  types.SeverityCritical,
	}
	if err := s.AppendIssue(ctx, is); err != nil {
		t.Fatalf("AppendIssue: %v", err)
	}

	got, err := s.Issues(ctx, time.Time{}, "catalog")
	if err != nil {
		t.Fatalf("Issues: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Category != types.IssueLanguageMismatch || got[0].Severity != types.SeverityCritical {
		t.Errorf("issue mismatch: %+v", got[0])
	}

	none, err := s.Issues(ctx, time.Time{}, "other-domain")
	if err != nil {
		t.Fatalf("Issues: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("domain filter leaked %d issue(s)", len(none))
	}
}

func TestOutcomes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAttempt(1, 65)
	mustAppend(t, s, a)

	if err := s.RecordOutcome(ctx, a.ID, 140); err == nil {
		t.Error("outcome above 100 must be rejected")
	}
	if err := s.RecordOutcome(ctx, a.ID+99, 50); err == nil {
		t.Error("outcome for a missing attempt must be rejected")
	}

	if err := s.RecordOutcome(ctx, a.ID, 40); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	// A later correction supersedes the first outcome.
	if err := s.RecordOutcome(ctx, a.ID, 85); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}

	samples, err := s.OutcomeSamples(ctx, time.Time{})
	if err != nil {
		t.Fatalf("OutcomeSamples: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("len = %d, want 1 (latest outcome wins)", len(samples))
	}
	if samples[0].Outcome != 85 {
		t.Errorf("outcome = %v, want latest (85)", samples[0].Outcome)
	}
	if samples[0].Score.Pattern.Value != 80 {
		t.Errorf("sample subscores not joined: %+v", samples[0].Score)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := types.HistoryConfig{HistoryDir: dir}

	first, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	mustAppend(t, first, sampleAttempt(1, 55))
	first.Close()

	// Reopening runs schema creation and migrations again; both must be
	// no-ops on an up-to-date database.
	second, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer second.Close()

	got, err := second.Attempts(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d after reopen, want 1", len(got))
	}
}

func TestRecorderSwallowsFailures(t *testing.T) {
	s := newTestStore(t)
	s.Close() // force every append to fail

	var buf bytes.Buffer
	r := NewRecorder(s, &buf)
	r.Record(context.Background(), []types.ValidationIssue{
		{Category: types.IssueContradiction, Message: "spec contradicts itself", Severity: types.SeverityError},
	}, "subject", "description", "catalog")

	if !strings.Contains(buf.String(), "warning") {
		t.Error("recorder must log storage failures instead of propagating them")
	}
}

func mustAppend(t *testing.T, s *Store, a *types.GenerationAttempt) {
	t.Helper()
	if err := s.AppendAttempt(context.Background(), a); err != nil {
		t.Fatalf("AppendAttempt: %v", err)
	}
}
