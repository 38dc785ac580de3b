package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueName returns a display name that no other test will produce.
func UniqueName(first string) string {
	return first + " Test" + uniqueSuffix()
}

// SeedEmployee inserts an employee together with its canonical alias.
func SeedEmployee(t *testing.T, pool *pgxpool.Pool, name string) domain.Employee {
	t.Helper()
	ctx := context.Background()

	first, last := domain.SplitName(name)
	e := domain.Employee{
		ID:             uuid.New(),
		CanonicalName:  domain.CanonicalDisplayName(name),
		NormalizedName: domain.NormalizeName(name),
		FirstName:      first,
		LastName:       last,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO employees (id, canonical_name, normalized_name, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.CanonicalName, e.NormalizedName, e.FirstName, e.LastName, e.CreatedAt,
	)
	if err != nil {
		t.Fatalf("SeedEmployee: insert employee: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO employee_aliases (id, employee_id, alias, alias_normalized, source, confirmed_by_user, confirmed_at)
		 VALUES ($1, $2, $3, $4, 'hours', true, now())`,
		uuid.New(), e.ID, e.CanonicalName, e.NormalizedName,
	)
	if err != nil {
		t.Fatalf("SeedEmployee: insert alias: %v", err)
	}

	return e
}
