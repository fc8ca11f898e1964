package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoneinapp/zonein-server/internal/domain"
	domainerrors "github.com/zoneinapp/zonein-server/internal/errors"
	"github.com/zoneinapp/zonein-server/internal/store"
	"github.com/zoneinapp/zonein-server/internal/validation"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newReportService(t *testing.T, st *store.Store) *ReportService {
	t.Helper()
	return NewReportService(st, validation.New(), slog.New(slog.DiscardHandler))
}

func ensureTestUser(t *testing.T, st *store.Store, userID string) {
	t.Helper()
	now := time.Now()
	err := st.CreateUser(context.Background(), &domain.User{
		ID:        userID,
		GoogleSub: "sub-" + userID,
		Email:     userID + "@test.com",
		Name:      "Test " + userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
}

func submitRequest(sessionID string, endedAt time.Time, score float64) SubmitReportRequest {
	return SubmitReportRequest{
		SessionID:     sessionID,
		StartedAt:     endedAt.Add(-time.Hour),
		EndedAt:       endedAt,
		DurationSec:   3600,
		FocusedSec:    3000,
		DistractedSec: 400,
		NeutralSec:    200,
		ZoneInScore:   score,
	}
}

func TestSubmitReport_IdempotentResubmission(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")

	// First submission scores 83.33 and sets the lifetime max.
	first, err := svc.SubmitReport(ctx, "user-1", submitRequest("sess-1", time.Now(), 83.33))
	require.NoError(t, err)
	assert.True(t, first.NewMaxScore)

	// Resubmitting the same session with a lower score replaces the report
	// but never lowers the max.
	second, err := svc.SubmitReport(ctx, "user-1", submitRequest("sess-1", time.Now(), 50.0))
	require.NoError(t, err)
	assert.False(t, second.NewMaxScore)
	assert.Equal(t, first.Report.ID, second.Report.ID)
	assert.Equal(t, 50.0, second.Report.ZoneInScore)

	reports, err := svc.ListReports(ctx, "user-1", "", "", "")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 50.0, reports[0].ZoneInScore)

	user, err := st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, user.MaxZoneInScore)
	assert.Equal(t, 83.33, *user.MaxZoneInScore)
}

func TestSubmitReport_Validation(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")

	tests := []struct {
		name   string
		mutate func(*SubmitReportRequest)
	}{
		{"missing session id", func(r *SubmitReportRequest) { r.SessionID = "" }},
		{"session id too long", func(r *SubmitReportRequest) { r.SessionID = string(make([]byte, 65)) }},
		{"score above 100", func(r *SubmitReportRequest) { r.ZoneInScore = 100.01 }},
		{"negative score", func(r *SubmitReportRequest) { r.ZoneInScore = -1 }},
		{"negative focused", func(r *SubmitReportRequest) { r.FocusedSec = -5 }},
		{"ended before started", func(r *SubmitReportRequest) { r.EndedAt = r.StartedAt.Add(-time.Minute) }},
		{"bad bucket state", func(r *SubmitReportRequest) {
			r.TimelineBuckets = []domain.TimelineBucket{
				{BucketStartTS: 1767225600, BucketDuration: 300, State: "daydreaming"},
			}
		}},
		{"bucket too long", func(r *SubmitReportRequest) {
			r.TimelineBuckets = []domain.TimelineBucket{
				{BucketStartTS: 1767225600, BucketDuration: 3601, State: domain.BucketStateFocused},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := submitRequest("sess-1", time.Now(), 50)
			tt.mutate(&req)

			_, err := svc.SubmitReport(ctx, "user-1", req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestSubmitReport_TimelineStoredVerbatim(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")

	req := submitRequest("sess-1", time.Now(), 70)
	req.TimelineBuckets = []domain.TimelineBucket{
		{BucketStartTS: 1767225600, BucketDuration: 300, State: domain.BucketStateFocused},
		{BucketStartTS: 1767225900, BucketDuration: 300, State: domain.BucketStateSnoozed},
	}

	result, err := svc.SubmitReport(ctx, "user-1", req)
	require.NoError(t, err)
	require.NotNil(t, result.Report.TimelineBucketsJSON)
	assert.Contains(t, *result.Report.TimelineBucketsJSON, "snoozed")

	// No timeline means NULL, not an empty array.
	result, err = svc.SubmitReport(ctx, "user-1", submitRequest("sess-2", time.Now(), 60))
	require.NoError(t, err)
	assert.Nil(t, result.Report.TimelineBucketsJSON)
}

func TestListReports_TimezoneWindow(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")

	// 03:00Z on Jan 1 is still Dec 31 in New York (UTC-5).
	lateNight := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	_, err := svc.SubmitReport(ctx, "user-1", submitRequest("sess-night", lateNight, 60))
	require.NoError(t, err)

	// 15:00Z on Jan 1 is Jan 1 in New York.
	afternoon := time.Date(2026, 1, 1, 15, 0, 0, 0, time.UTC)
	_, err = svc.SubmitReport(ctx, "user-1", submitRequest("sess-day", afternoon, 70))
	require.NoError(t, err)

	reports, err := svc.ListReports(ctx, "user-1", "2026-01-01", "2026-01-01", "America/New_York")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "sess-day", reports[0].SessionID)

	// The same query in UTC sees both.
	reports, err = svc.ListReports(ctx, "user-1", "2026-01-01", "2026-01-01", "")
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestListReports_UnknownZoneRejected(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ensureTestUser(t, st, "user-1")

	_, err := svc.ListReports(context.Background(), "user-1", "2026-01-01", "2026-01-01", "Atlantis/Lost")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestListReports_ZoneWithoutRangeIsDisplayOnly(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")

	_, err := svc.SubmitReport(ctx, "user-1", submitRequest("sess-1", time.Now(), 60))
	require.NoError(t, err)

	// With no date bound the zone never filters anything, so an unknown one
	// must not fail the request.
	reports, err := svc.ListReports(ctx, "user-1", "", "", "Atlantis/Lost")
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestGetReport_ForeignLooksLikeMissing(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")
	ensureTestUser(t, st, "user-2")

	result, err := svc.SubmitReport(ctx, "user-1", submitRequest("sess-1", time.Now(), 60))
	require.NoError(t, err)

	_, err = svc.GetReport(ctx, "user-2", result.Report.ID)
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestDeleteAllReports_KeepsLifetimeMax(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")

	_, err := svc.SubmitReport(ctx, "user-1", submitRequest("sess-1", time.Now(), 91.5))
	require.NoError(t, err)

	n, err := svc.DeleteAllReports(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Deleting history does not rewrite the lifetime max.
	user, err := st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, user.MaxZoneInScore)
	assert.Equal(t, 91.5, *user.MaxZoneInScore)

	// Deleting again is a no-op, not an error.
	n, err = svc.DeleteAllReports(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSetPublished(t *testing.T) {
	st := newTestStore(t)
	svc := newReportService(t, st)
	ctx := context.Background()
	ensureTestUser(t, st, "user-1")
	ensureTestUser(t, st, "user-2")

	result, err := svc.SubmitReport(ctx, "user-1", submitRequest("sess-1", time.Now(), 60))
	require.NoError(t, err)

	report, err := svc.SetPublished(ctx, "user-1", result.Report.ID, true)
	require.NoError(t, err)
	assert.True(t, report.Published)

	// Publishing twice is idempotent.
	report, err = svc.SetPublished(ctx, "user-1", result.Report.ID, true)
	require.NoError(t, err)
	assert.True(t, report.Published)

	// A non-owner gets not found, not forbidden.
	_, err = svc.SetPublished(ctx, "user-2", result.Report.ID, false)
	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)

	report, err = svc.SetPublished(ctx, "user-1", result.Report.ID, false)
	require.NoError(t, err)
	assert.False(t, report.Published)
}
