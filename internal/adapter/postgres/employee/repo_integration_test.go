package employee_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/employee"
	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

func newRepo(t *testing.T) (*employee.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return employee.New(pool), pool
}

func TestRepo_Integration_CreateAndFind(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	name := testhelper.UniqueName("Noa")
	created, err := repo.Create(ctx, domain.NewEmployeeFromName("  "+name+" "))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CanonicalName != name {
		t.Errorf("CanonicalName = %q, want %q", created.CanonicalName, name)
	}

	found, err := repo.FindByNormalizedName(ctx, domain.NormalizeName(name))
	if err != nil {
		t.Fatalf("FindByNormalizedName: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("found id %s, want %s", found.ID, created.ID)
	}

	_, err = repo.Create(ctx, domain.NewEmployeeFromName(name))
	if !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("second Create error = %v, want ErrDuplicateIdentity", err)
	}
}

func TestRepo_Integration_ConcurrentCreateYieldsOneEmployee(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	name := testhelper.UniqueName("Yael")

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dups    int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, domain.NewEmployeeFromName(name))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrDuplicateIdentity):
				dups++
			default:
				t.Errorf("Create: unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || dups != workers-1 {
		t.Fatalf("created=%d duplicates=%d, want 1 and %d", created, dups, workers-1)
	}
}

func TestRepo_Integration_AliasOwnership(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	first := testhelper.SeedEmployee(t, pool, testhelper.UniqueName("David"))
	second := testhelper.SeedEmployee(t, pool, testhelper.UniqueName("Dana"))

	alias := domain.Alias{EmployeeID: first.ID, Alias: first.CanonicalName + "x", Source: domain.SourceArticles}
	if err := repo.RecordAlias(ctx, alias); err != nil {
		t.Fatalf("RecordAlias: %v", err)
	}
	// Same owner again is a no-op.
	if err := repo.RecordAlias(ctx, alias); err != nil {
		t.Fatalf("RecordAlias repeat: %v", err)
	}

	alias.EmployeeID = second.ID
	if err := repo.RecordAlias(ctx, alias); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("RecordAlias other owner error = %v, want ErrConflict", err)
	}

	owner, err := repo.FindByAlias(ctx, domain.NormalizeName(alias.Alias))
	if err != nil {
		t.Fatalf("FindByAlias: %v", err)
	}
	if owner != first.ID {
		t.Errorf("alias owner = %s, want %s", owner, first.ID)
	}

	byEmployee, err := repo.AliasesByEmployeeIDs(ctx, []uuid.UUID{first.ID, second.ID})
	if err != nil {
		t.Fatalf("AliasesByEmployeeIDs: %v", err)
	}
	if len(byEmployee[first.ID]) != 2 || len(byEmployee[second.ID]) != 1 {
		t.Errorf("aliases: first=%d second=%d, want 2 and 1", len(byEmployee[first.ID]), len(byEmployee[second.ID]))
	}

	entries, err := repo.ListAliases(ctx)
	if err != nil {
		t.Fatalf("ListAliases: %v", err)
	}
	seen := false
	for _, e := range entries {
		if e.AliasNormalized == domain.NormalizeName(alias.Alias) {
			seen = e.EmployeeID == first.ID && !e.ConfirmedByUser
		}
	}
	if !seen {
		t.Error("ListAliases: recorded alias missing or misattributed")
	}
}

func TestRepo_Integration_List(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	e := testhelper.SeedEmployee(t, pool, testhelper.UniqueName("Avi"))

	got, total, err := repo.List(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total < 1 {
		t.Fatalf("List total = %d, want >= 1", total)
	}
	found := false
	for _, g := range got {
		if g.ID == e.ID {
			found = true
		}
	}
	if !found {
		t.Error("List: seeded employee missing")
	}

	byID, err := repo.GetByIDs(ctx, []uuid.UUID{e.ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != e.ID {
		t.Errorf("GetByIDs = %+v", byID)
	}
}
