package seeder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// mockRepo is an in-memory registry that records calls.
type mockRepo struct {
	mu sync.Mutex

	employees map[string]*domain.Employee
	aliases   map[string]uuid.UUID

	createErr  error
	createOnce bool // createErr applies to the first Create only

	callLog []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		employees: make(map[string]*domain.Employee),
		aliases:   make(map[string]uuid.UUID),
	}
}

func (m *mockRepo) FindByNormalizedName(_ context.Context, normalized string) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, "Find")
	if e, ok := m.employees[normalized]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepo) Create(_ context.Context, e domain.NewEmployee) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, "Create")
	normalized := domain.NormalizeName(e.CanonicalName)
	if m.createErr != nil {
		err := m.createErr
		if m.createOnce {
			m.createErr = nil
			// Someone else won the race.
			m.employees[normalized] = &domain.Employee{ID: uuid.New(), CanonicalName: e.CanonicalName, NormalizedName: normalized}
		}
		return nil, err
	}
	emp := &domain.Employee{
		ID:             uuid.New(),
		CanonicalName:  e.CanonicalName,
		NormalizedName: normalized,
		EmployeeNumber: e.EmployeeNumber,
	}
	m.employees[normalized] = emp
	return emp, nil
}

func (m *mockRepo) RecordAlias(_ context.Context, a domain.Alias) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, "RecordAlias")
	if a.Source != domain.SourceRoster || !a.ConfirmedByUser {
		return errors.New("roster aliases must be confirmed roster aliases")
	}
	if owner, ok := m.aliases[a.AliasNormalized]; ok && owner != a.EmployeeID {
		return domain.ErrConflict
	}
	m.aliases[a.AliasNormalized] = a.EmployeeID
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleRoster = `Name,Employee Number,Aliases
David Cohen,1001,Dudi Cohen; D. Cohen
Jonathan Levi,1002,Yoni Levi|Jonatan Levi
,,
Dana Ron,,
`

func TestPipeline_Seed(t *testing.T) {
	t.Parallel()

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, passthroughTx{}, Config{})

	res, err := p.Seed(context.Background(), strings.NewReader(sampleRoster))
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Created != 3 || res.Existing != 0 {
		t.Errorf("created=%d existing=%d, want 3/0", res.Created, res.Existing)
	}
	// 3 canonical names + 4 aliases
	if res.Aliases != 7 {
		t.Errorf("aliases = %d, want 7", res.Aliases)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}

	cohen := repo.employees["david cohen"]
	if cohen == nil || cohen.EmployeeNumber == nil || *cohen.EmployeeNumber != "1001" {
		t.Fatalf("david cohen not seeded with number: %+v", cohen)
	}
	if repo.aliases["dudi cohen"] != cohen.ID {
		t.Error("alias dudi cohen should belong to david cohen")
	}
}

func TestPipeline_Seed_Idempotent(t *testing.T) {
	t.Parallel()

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, passthroughTx{}, Config{})

	if _, err := p.Seed(context.Background(), strings.NewReader(sampleRoster)); err != nil {
		t.Fatal(err)
	}
	res, err := p.Seed(context.Background(), strings.NewReader(sampleRoster))
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 0 || res.Existing != 3 {
		t.Errorf("second run created=%d existing=%d, want 0/3", res.Created, res.Existing)
	}
	if len(repo.employees) != 3 {
		t.Errorf("registry has %d employees, want 3", len(repo.employees))
	}
}

func TestPipeline_Seed_AliasConflictIsReportedNotFatal(t *testing.T) {
	t.Parallel()

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, passthroughTx{}, Config{})

	roster := "name,aliases\nDavid Cohen,Dudi\nDavid Levi,Dudi\nDana Ron,\n"
	res, err := p.Seed(context.Background(), strings.NewReader(roster))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "row 3") {
		t.Fatalf("errors = %v, want one error for row 3", res.Errors)
	}
	if res.Created != 2 {
		t.Errorf("created = %d, want 2", res.Created)
	}
}

func TestPipeline_Seed_RecoversDuplicateIdentity(t *testing.T) {
	t.Parallel()

	repo := newMockRepo()
	repo.createErr = domain.ErrDuplicateIdentity
	repo.createOnce = true
	p := NewPipeline(testLogger(), repo, passthroughTx{}, Config{})

	res, err := p.Seed(context.Background(), strings.NewReader("name\nDavid Cohen\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 0 || res.Existing != 1 {
		t.Fatalf("result = %+v, want the concurrently created employee reused", res)
	}
}

func TestPipeline_Seed_DryRun(t *testing.T) {
	t.Parallel()

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, passthroughTx{}, Config{DryRun: true})

	res, err := p.Seed(context.Background(), strings.NewReader(sampleRoster))
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", res.Skipped)
	}
	if len(repo.callLog) != 0 {
		t.Errorf("dry run touched the repo: %v", repo.callLog)
	}
}

func TestPipeline_Run_NoPath(t *testing.T) {
	t.Parallel()

	p := NewPipeline(testLogger(), newMockRepo(), passthroughTx{}, Config{})
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error without a roster path")
	}
}
