package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/identity"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/ingestion"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/kpi"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/records"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
	"github.com/heartmarshall/newsdesk-analytics/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeIdentity struct {
	gotRows   []domain.ParsedRow
	gotSource string
	gotInput  identity.ExecuteInput
	analysis  *identity.Analysis
	result    *identity.ExecuteResult
	err       error
}

func (f *fakeIdentity) Analyze(ctx context.Context, rows []domain.ParsedRow, _ domain.Source) (*identity.Analysis, error) {
	f.gotRows = rows
	f.gotSource, _ = ctxutil.SourceFromCtx(ctx)
	return f.analysis, f.err
}

func (f *fakeIdentity) Execute(_ context.Context, in identity.ExecuteInput) (*identity.ExecuteResult, error) {
	f.gotInput = in
	return f.result, f.err
}

type fakeIngestion struct {
	gotResolved map[string]uuid.UUID
	gotRows     []domain.ParsedRow
	receipt     *ingestion.Receipt
	err         error
}

func (f *fakeIngestion) Upsert(_ context.Context, resolved map[string]uuid.UUID, rows []domain.ParsedRow, _ domain.Source) (*ingestion.Receipt, error) {
	f.gotResolved = resolved
	f.gotRows = rows
	return f.receipt, f.err
}

type fakeDirectory struct {
	gotLimit, gotOffset int
}

func (f *fakeDirectory) List(_ context.Context, limit, offset int) (*identity.EmployeePage, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return &identity.EmployeePage{Employees: []identity.EmployeeView{}, Limit: limit, Offset: offset}, nil
}

type fakeKPI struct {
	got domain.Period
	err error
}

func (f *fakeKPI) Rankings(_ context.Context, p domain.Period) (*kpi.Rankings, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &kpi.Rankings{From: p.From.Format(time.DateOnly), To: p.To.Format(time.DateOnly)}, nil
}

type fakeRecords struct {
	gotID     uuid.UUID
	gotPeriod domain.Period
	articles  map[string]*records.ArticleView
}

func (f *fakeRecords) EmployeeHours(_ context.Context, id uuid.UUID, p domain.Period) (*records.EmployeeHours, error) {
	f.gotID, f.gotPeriod = id, p
	return &records.EmployeeHours{EmployeeID: id, TotalHours: 8, Days: []records.DayView{{Date: "2024-03-01", Hours: 8}}}, nil
}

func (f *fakeRecords) Article(_ context.Context, id string) (*records.ArticleView, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

type testServer struct {
	mux       *http.ServeMux
	identity  *fakeIdentity
	ingestion *fakeIngestion
	directory *fakeDirectory
	records   *fakeRecords
	kpi       *fakeKPI
}

func newTestServer() *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		identity:  &fakeIdentity{},
		ingestion: &fakeIngestion{},
		directory: &fakeDirectory{},
		records:   &fakeRecords{articles: map[string]*records.ArticleView{}},
		kpi:       &fakeKPI{},
	}
	ts.mux = NewRouter(Handlers{
		Health:    NewHealthHandler(nil, "test"),
		Uploads:   NewUploadHandler(ts.identity, ts.ingestion, logger),
		Employees: NewEmployeeHandler(ts.directory, logger),
		Records:   NewRecordsHandler(ts.records, logger),
		KPI:       NewKPIHandler(ts.kpi, logger),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, httptest.NewRequest(method, path, rdr))
	return rec
}

// ---------------------------------------------------------------------------
// Uploads
// ---------------------------------------------------------------------------

func TestAnalyze_HoursRows(t *testing.T) {
	t.Parallel()
	ts := newTestServer()
	ts.identity.analysis = &identity.Analysis{TotalUniqueNames: 1}

	rec := ts.do(t, http.MethodPost, "/api/v1/uploads/hours/analyze",
		`{"rows":[{"fullName":"David Cohen","date":"2024-03-01","hours":8,"status":"office"},{"row":9,"name":"Noa Bar","date":"2024-03-02","hours":4}]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ts.identity.gotRows, 2)
	first, ok := ts.identity.gotRows[0].(domain.HoursRow)
	require.True(t, ok)
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "David Cohen", first.Name)
	assert.Equal(t, 8.0, first.Hours)
	assert.Equal(t, "office", *first.Status)
	assert.Equal(t, 9, ts.identity.gotRows[1].RowNumber())
	assert.Equal(t, "Noa Bar", ts.identity.gotRows[1].(domain.HoursRow).Name, "legacy name key")
	assert.Equal(t, "hours", ts.identity.gotSource)
}

func TestAnalyze_BadDate(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/uploads/hours/analyze", `{"rows":[{"fullName":"A B","date":"01/03/2024"}]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "rows[0].date", resp.Fields[0].Field)
}

func TestUpload_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		body     string
		svcErr   error
		wantCode int
	}{
		{name: "unknown source", path: "/api/v1/uploads/payroll/analyze", body: `{"rows":[]}`, wantCode: http.StatusBadRequest},
		{name: "malformed json", path: "/api/v1/uploads/hours/analyze", body: `{"rows":`, wantCode: http.StatusBadRequest},
		{name: "unknown field", path: "/api/v1/uploads/hours/analyze", body: `{"rowz":[]}`, wantCode: http.StatusBadRequest},
		{name: "trailing data", path: "/api/v1/uploads/hours/analyze", body: `{"rows":[]} {}`, wantCode: http.StatusBadRequest},
		{name: "conflict", path: "/api/v1/uploads/articles/execute", body: `{"decisions":[]}`, svcErr: fmt.Errorf("alias: %w", domain.ErrConflict), wantCode: http.StatusConflict},
		{name: "not found", path: "/api/v1/uploads/articles/execute", body: `{"decisions":[]}`, svcErr: domain.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "internal", path: "/api/v1/uploads/articles/execute", body: `{"decisions":[]}`, svcErr: fmt.Errorf("pool closed"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer()
			ts.identity.err = tt.svcErr
			ts.identity.analysis = &identity.Analysis{}
			ts.identity.result = &identity.ExecuteResult{}

			rec := ts.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusInternalServerError {
				assert.Contains(t, rec.Body.String(), "internal server error")
				assert.NotContains(t, rec.Body.String(), "pool closed")
			}
		})
	}
}

func TestExecute_PassesDecisions(t *testing.T) {
	t.Parallel()
	ts := newTestServer()
	id := uuid.New()
	ts.identity.result = &identity.ExecuteResult{Resolved: map[string]identity.Binding{"David Kohan": {EmployeeID: id, ConfirmedByUser: true}}}

	body := fmt.Sprintf(`{"decisions":[{"inputName":"David Kohan","action":"match","employeeId":%q},{"inputName":"Noa Bar","action":"create_new"}],
		"autoMatched":[{"inputName":"David Cohon","employeeId":%q,"matchType":"auto","similarityScore":0.91}]}`, id, id)
	rec := ts.do(t, http.MethodPost, "/api/v1/uploads/articles/execute", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	in := ts.identity.gotInput
	assert.Equal(t, domain.SourceArticles, in.Source)
	require.Len(t, in.Decisions, 2)
	assert.Equal(t, resolution.Match("David Kohan", id), in.Decisions[0])
	assert.Equal(t, resolution.CreateNew("Noa Bar"), in.Decisions[1])
	require.Len(t, in.AutoMatched, 1)
	assert.Equal(t, id, in.AutoMatched[0].EmployeeID)

	var out identity.ExecuteResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, id, out.Resolved["David Kohan"].EmployeeID)
}

func TestUpsert_Receipt(t *testing.T) {
	t.Parallel()
	ts := newTestServer()
	id := uuid.New()
	ts.ingestion.receipt = &ingestion.Receipt{Inserted: 1, Errors: []string{}}

	body := fmt.Sprintf(`{"resolved":{"Dana Levi":%q},"rows":[{"articleId":"a-1","fullName":"Dana Levi","views":80,"publishedAt":"2024-03-01T09:00:00Z"}]}`, id)
	rec := ts.do(t, http.MethodPost, "/api/v1/uploads/articles/upsert", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, id, ts.ingestion.gotResolved["Dana Levi"])
	row, ok := ts.ingestion.gotRows[0].(domain.ArticleRow)
	require.True(t, ok)
	assert.Equal(t, int64(80), row.Views)
	require.NotNil(t, row.PublishedAt)
	assert.JSONEq(t, `{"inserted":1,"updated":0,"skipped":0,"errors":[]}`, rec.Body.String())
}

func TestUpsert_AllChunksFailed(t *testing.T) {
	t.Parallel()
	ts := newTestServer()
	ts.ingestion.receipt = &ingestion.Receipt{Skipped: 2, Errors: []string{"chunk 1 (2 rows): boom"}}
	ts.ingestion.err = domain.ErrAllChunksFailed

	rec := ts.do(t, http.MethodPost, "/api/v1/uploads/hours/upsert", `{"resolved":{},"rows":[]}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp UpsertFailure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, 2, resp.Receipt.Skipped)
}

// ---------------------------------------------------------------------------
// Employees and KPI
// ---------------------------------------------------------------------------

func TestEmployees_List(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/employees?limit=20&offset=40", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, ts.directory.gotLimit)
	assert.Equal(t, 40, ts.directory.gotOffset)

	rec = ts.do(t, http.MethodGet, "/api/v1/employees?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKPIRankings(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/kpi/rankings?from=2024-03-01&to=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), ts.kpi.got.To)

	rec = ts.do(t, http.MethodGet, "/api/v1/kpi/rankings?from=2024-03-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []domain.FieldError{{Field: "to", Message: "required"}}, resp.Fields)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/uploads/hours/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

func TestEmployeeHours_Route(t *testing.T) {
	t.Parallel()
	ts := newTestServer()
	id := uuid.New()

	rec := ts.do(t, http.MethodGet, "/api/v1/employees/"+id.String()+"/hours?from=2024-03-01&to=2024-03-31", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, id, ts.records.gotID)
	assert.Equal(t, 31, ts.records.gotPeriod.To.Day())
	var out records.EmployeeHours
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 8.0, out.TotalHours)
	require.Len(t, out.Days, 1)
}

func TestEmployeeHours_BadInput(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/employees/not-a-uuid/hours?from=2024-03-01&to=2024-03-31", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/employees/"+uuid.NewString()+"/hours?from=2024-03-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticle_Route(t *testing.T) {
	t.Parallel()
	ts := newTestServer()
	ts.records.articles["a-1"] = &records.ArticleView{ArticleID: "a-1", Views: 80}

	rec := ts.do(t, http.MethodGet, "/api/v1/articles/a-1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"views":80`)

	rec = ts.do(t, http.MethodGet, "/api/v1/articles/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
