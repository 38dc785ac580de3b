package records

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

type fakeHours struct {
	records        []domain.DailyHoursRecord
	gotFrom, gotTo time.Time
}

func (f *fakeHours) ListByEmployee(_ context.Context, _ uuid.UUID, from, to time.Time) ([]domain.DailyHoursRecord, error) {
	f.gotFrom, f.gotTo = from, to
	return f.records, nil
}

type fakeArticles map[string]domain.ArticleRecord

func (f fakeArticles) GetByID(_ context.Context, id string) (*domain.ArticleRecord, error) {
	a, ok := f[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

type fakeEmployees []domain.Employee

func (f fakeEmployees) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range f {
		for _, id := range ids {
			if e.ID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func TestEmployeeHours(t *testing.T) {
	t.Parallel()

	dana := domain.Employee{ID: uuid.New(), CanonicalName: "Dana Levi"}
	office := "office"
	hours := &fakeHours{records: []domain.DailyHoursRecord{
		{EmployeeID: dana.ID, WorkDate: day(1), Hours: 8, Status: &office},
		{EmployeeID: dana.ID, WorkDate: day(2), Hours: 6.5},
	}}
	svc := NewService(testLogger(), hours, fakeArticles{}, fakeEmployees{dana})

	got, err := svc.EmployeeHours(context.Background(), dana.ID, domain.Period{From: day(1), To: day(31)})
	require.NoError(t, err)

	assert.Equal(t, "Dana Levi", got.CanonicalName)
	assert.Equal(t, "2024-03-01", got.From)
	assert.Equal(t, 14.5, got.TotalHours)
	require.Len(t, got.Days, 2)
	assert.Equal(t, "2024-03-01", got.Days[0].Date)
	assert.Equal(t, "office", *got.Days[0].Status)
	assert.Equal(t, day(31), hours.gotTo)
}

func TestEmployeeHours_UnknownEmployee(t *testing.T) {
	t.Parallel()

	svc := NewService(testLogger(), &fakeHours{}, fakeArticles{}, fakeEmployees{})

	_, err := svc.EmployeeHours(context.Background(), uuid.New(), domain.Period{From: day(1), To: day(2)})

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmployeeHours_BadPeriod(t *testing.T) {
	t.Parallel()

	svc := NewService(testLogger(), &fakeHours{}, fakeArticles{}, fakeEmployees{})

	_, err := svc.EmployeeHours(context.Background(), uuid.New(), domain.Period{From: day(5), To: day(1)})

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestArticle(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	svc := NewService(testLogger(), &fakeHours{}, fakeArticles{
		"a-1": {ArticleID: "a-1", EmployeeID: &owner, Title: "Budget", Views: 30, IsLowViews: true},
	}, fakeEmployees{})

	got, err := svc.Article(context.Background(), " a-1 ")
	require.NoError(t, err)
	assert.Equal(t, "Budget", got.Title)
	assert.True(t, got.IsLowViews)
	assert.Equal(t, owner, *got.EmployeeID)

	_, err = svc.Article(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.Article(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
