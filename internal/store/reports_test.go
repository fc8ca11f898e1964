package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestUpsertReportInsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")

	report := makeTestReport("rep-1", "user-1", "sess-1", time.Now(), 83.33)
	timeline := `[{"bucket_start_ts":1767225600,"bucket_duration_sec":300,"state":"focused"}]`
	report.TimelineBucketsJSON = &timeline
	report.CloudAIEnabled = true

	stored, err := s.UpsertReport(ctx, report)
	if err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	if stored.ID != "rep-1" {
		t.Errorf("ID: got %q, want rep-1", stored.ID)
	}
	if stored.ZoneInScore != 83.33 {
		t.Errorf("ZoneInScore: got %v, want 83.33", stored.ZoneInScore)
	}
	if stored.TimelineBucketsJSON == nil || *stored.TimelineBucketsJSON != timeline {
		t.Errorf("TimelineBucketsJSON: got %v", stored.TimelineBucketsJSON)
	}
	if !stored.CloudAIEnabled {
		t.Error("CloudAIEnabled: expected true")
	}
	if stored.Published {
		t.Error("Published: expected false on insert")
	}
}

func TestUpsertReportReplacesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")

	first := makeTestReport("rep-1", "user-1", "sess-1", time.Now(), 83.33)
	stored, err := s.UpsertReport(ctx, first)
	if err != nil {
		t.Fatalf("first UpsertReport: %v", err)
	}

	// Publish it, then resubmit the session with a different score and ID.
	if err := s.SetReportPublished(ctx, "user-1", "rep-1", true); err != nil {
		t.Fatalf("SetReportPublished: %v", err)
	}

	second := makeTestReport("rep-2", "user-1", "sess-1", time.Now().Add(time.Minute), 50.0)
	replaced, err := s.UpsertReport(ctx, second)
	if err != nil {
		t.Fatalf("second UpsertReport: %v", err)
	}

	// Row identity, created_at, and published flag survive the resubmission.
	if replaced.ID != "rep-1" {
		t.Errorf("ID: got %q, want original rep-1", replaced.ID)
	}
	if !replaced.CreatedAt.Equal(stored.CreatedAt) {
		t.Errorf("CreatedAt changed: got %v, want %v", replaced.CreatedAt, stored.CreatedAt)
	}
	if !replaced.Published {
		t.Error("Published: expected to survive resubmission")
	}
	if replaced.ZoneInScore != 50.0 {
		t.Errorf("ZoneInScore: got %v, want 50.0", replaced.ZoneInScore)
	}

	// Still exactly one row for the session.
	reports, err := s.ListReports(ctx, "user-1", nil, nil)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 report, got %d", len(reports))
	}
}

func TestUpsertReportSameSessionDifferentUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")
	mustCreateUser(t, s, "user-2", "sub-2")

	if _, err := s.UpsertReport(ctx, makeTestReport("rep-1", "user-1", "shared-sess", time.Now(), 60)); err != nil {
		t.Fatalf("UpsertReport user-1: %v", err)
	}
	if _, err := s.UpsertReport(ctx, makeTestReport("rep-2", "user-2", "shared-sess", time.Now(), 70)); err != nil {
		t.Fatalf("UpsertReport user-2: %v", err)
	}

	for _, userID := range []string{"user-1", "user-2"} {
		reports, err := s.ListReports(ctx, userID, nil, nil)
		if err != nil {
			t.Fatalf("ListReports(%s): %v", userID, err)
		}
		if len(reports) != 1 {
			t.Errorf("%s: expected 1 report, got %d", userID, len(reports))
		}
	}
}

func TestUpsertReportConcurrentSameSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := makeTestReport("rep-"+string(rune('a'+i)), "user-1", "sess-1", time.Now(), float64(i*10))
			if _, err := s.UpsertReport(ctx, r); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent UpsertReport: %v", err)
	}

	reports, err := s.ListReports(ctx, "user-1", nil, nil)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected exactly 1 report after concurrent upserts, got %d", len(reports))
	}
}

func TestGetReportOwnerScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")
	mustCreateUser(t, s, "user-2", "sub-2")

	if _, err := s.UpsertReport(ctx, makeTestReport("rep-1", "user-1", "sess-1", time.Now(), 80)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	if _, err := s.GetReport(ctx, "user-1", "rep-1"); err != nil {
		t.Errorf("owner GetReport: %v", err)
	}

	// Someone else's report looks exactly like a missing one.
	_, err := s.GetReport(ctx, "user-2", "rep-1")
	if !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound for foreign report, got %v", err)
	}

	_, err = s.GetReport(ctx, "user-1", "rep-missing")
	if !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound for missing report, got %v", err)
	}
}

func TestListReportsRangeFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")

	// Three sessions: before, inside, and straddling the window start.
	mk := func(id, sess string, start, end time.Time) {
		t.Helper()
		r := makeTestReport(id, "user-1", sess, end, 50)
		r.StartedAt = start
		if _, err := s.UpsertReport(ctx, r); err != nil {
			t.Fatalf("UpsertReport(%s): %v", id, err)
		}
	}

	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mk("rep-before", "sess-a", day.Add(-3*time.Hour), day.Add(-2*time.Hour))
	mk("rep-inside", "sess-b", day.Add(10*time.Hour), day.Add(11*time.Hour))
	mk("rep-straddle", "sess-c", day.Add(-30*time.Minute), day.Add(30*time.Minute))
	mk("rep-after", "sess-d", day.Add(25*time.Hour), day.Add(26*time.Hour))

	from := day
	to := day.Add(24 * time.Hour)
	reports, err := s.ListReports(ctx, "user-1", &from, &to)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}

	// A session overlaps when it ended at or after from and started before to.
	got := map[string]bool{}
	for _, r := range reports {
		got[r.ID] = true
	}
	if len(reports) != 2 || !got["rep-inside"] || !got["rep-straddle"] {
		t.Errorf("expected rep-inside and rep-straddle, got %v", got)
	}

	// Newest session first.
	if reports[0].ID != "rep-inside" {
		t.Errorf("expected rep-inside first, got %s", reports[0].ID)
	}
}

func TestListReportsFractionalSecondBoundary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")

	// Ends half a second after the window opens. The stored text form must
	// still compare at or after the bound.
	end := time.Date(2026, 1, 1, 5, 0, 0, 500_000_000, time.UTC)
	if _, err := s.UpsertReport(ctx, makeTestReport("rep-1", "user-1", "sess-1", end, 50)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	from := time.Date(2026, 1, 1, 5, 0, 0, 0, time.UTC)
	reports, err := s.ListReports(ctx, "user-1", &from, nil)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected the fractional-second report in the window, got %d", len(reports))
	}
	if !reports[0].EndedAt.Equal(end) {
		t.Errorf("EndedAt: got %v, want %v", reports[0].EndedAt, end)
	}
}

func TestListReportsFractionalSecondOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")

	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	whole := makeTestReport("rep-whole", "user-1", "sess-a", base.Add(time.Hour), 50)
	whole.StartedAt = base
	frac := makeTestReport("rep-frac", "user-1", "sess-b", base.Add(time.Hour), 50)
	frac.StartedAt = base.Add(500 * time.Millisecond)

	if _, err := s.UpsertReport(ctx, whole); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}
	if _, err := s.UpsertReport(ctx, frac); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	reports, err := s.ListReports(ctx, "user-1", nil, nil)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	// Newest session first; the half-second offset must not invert the order.
	if reports[0].ID != "rep-frac" {
		t.Errorf("expected rep-frac first, got %s", reports[0].ID)
	}
}

func TestListReportsIsolatedPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")
	mustCreateUser(t, s, "user-2", "sub-2")

	if _, err := s.UpsertReport(ctx, makeTestReport("rep-1", "user-1", "sess-1", time.Now(), 80)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	reports, err := s.ListReports(ctx, "user-2", nil, nil)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected no reports for user-2, got %d", len(reports))
	}
}

func TestSetReportPublished(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")
	mustCreateUser(t, s, "user-2", "sub-2")

	if _, err := s.UpsertReport(ctx, makeTestReport("rep-1", "user-1", "sess-1", time.Now(), 80)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	if err := s.SetReportPublished(ctx, "user-1", "rep-1", true); err != nil {
		t.Fatalf("SetReportPublished: %v", err)
	}

	r, err := s.GetReport(ctx, "user-1", "rep-1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if !r.Published {
		t.Error("expected report to be published")
	}

	// A non-owner cannot publish or unpublish.
	err = s.SetReportPublished(ctx, "user-2", "rep-1", false)
	if !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestDeleteUserReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")
	mustCreateUser(t, s, "user-2", "sub-2")

	if _, err := s.UpsertReport(ctx, makeTestReport("rep-1", "user-1", "sess-1", time.Now(), 80)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}
	if _, err := s.UpsertReport(ctx, makeTestReport("rep-2", "user-1", "sess-2", time.Now(), 60)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}
	if _, err := s.UpsertReport(ctx, makeTestReport("rep-3", "user-2", "sess-1", time.Now(), 70)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	n, err := s.DeleteUserReports(ctx, "user-1")
	if err != nil {
		t.Fatalf("DeleteUserReports: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	// Other users' reports are untouched.
	reports, err := s.ListReports(ctx, "user-2", nil, nil)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 report for user-2, got %d", len(reports))
	}

	// Deleting again is not an error.
	n, err = s.DeleteUserReports(ctx, "user-1")
	if err != nil {
		t.Fatalf("second DeleteUserReports: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 deleted, got %d", n)
	}
}

func TestListPublishedReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "sub-1")
	mustCreateUser(t, s, "user-2", "sub-2")

	if err := s.SetUsername(ctx, "user-1", "ada-12345678"); err != nil {
		t.Fatalf("SetUsername: %v", err)
	}

	if _, err := s.UpsertReport(ctx, makeTestReport("rep-1", "user-1", "sess-1", time.Now(), 90)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}
	if _, err := s.UpsertReport(ctx, makeTestReport("rep-2", "user-2", "sess-1", time.Now(), 95)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}
	if _, err := s.UpsertReport(ctx, makeTestReport("rep-3", "user-2", "sess-2", time.Now(), 40)); err != nil {
		t.Fatalf("UpsertReport: %v", err)
	}

	// rep-3 stays private.
	if err := s.SetReportPublished(ctx, "user-1", "rep-1", true); err != nil {
		t.Fatalf("SetReportPublished: %v", err)
	}
	if err := s.SetReportPublished(ctx, "user-2", "rep-2", true); err != nil {
		t.Fatalf("SetReportPublished: %v", err)
	}

	published, err := s.ListPublishedReports(ctx, 0)
	if err != nil {
		t.Fatalf("ListPublishedReports: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published reports, got %d", len(published))
	}

	// Best score first.
	if published[0].Report.ID != "rep-2" || published[1].Report.ID != "rep-1" {
		t.Errorf("wrong order: got %s, %s", published[0].Report.ID, published[1].Report.ID)
	}
	if published[1].OwnerUsername != "ada-12345678" {
		t.Errorf("OwnerUsername: got %q", published[1].OwnerUsername)
	}
	if published[0].OwnerID != "user-2" {
		t.Errorf("OwnerID: got %q", published[0].OwnerID)
	}

	// Limit caps the result.
	published, err = s.ListPublishedReports(ctx, 1)
	if err != nil {
		t.Fatalf("ListPublishedReports limit: %v", err)
	}
	if len(published) != 1 || published[0].Report.ID != "rep-2" {
		t.Errorf("expected only rep-2, got %d rows", len(published))
	}
}
