// Package kpi turns period aggregates into per-employee performance rankings.
package kpi

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// WorkdayHours converts pace from articles per hour to articles per day.
const WorkdayHours = 8

type statsRepo interface {
	PeriodStats(ctx context.Context, p domain.Period, lowViewsThreshold int64) ([]domain.EmployeeStats, error)
	Totals(ctx context.Context, p domain.Period) (domain.PeriodTotals, error)
}

// EmployeeKPI is one ranked row.
type EmployeeKPI struct {
	EmployeeID     uuid.UUID `json:"employeeId"`
	CanonicalName  string    `json:"canonicalName"`
	TotalHours     float64   `json:"totalHours"`
	DaysWorked     int64     `json:"daysWorked"`
	Articles       int64     `json:"articles"`
	LowViewCount   int64     `json:"lowViewArticles"`
	TotalViews     int64     `json:"totalViews"`
	AvgViews       float64   `json:"avgViews"`
	Pace           float64   `json:"pace"`
	Efficiency     float64   `json:"efficiency"`
	EfficiencyRank int       `json:"efficiencyRank"`
	PaceRank       int       `json:"paceRank"`
}

// Rankings is the result of a KPI query.
type Rankings struct {
	From      string              `json:"from"`
	To        string              `json:"to"`
	Totals    domain.PeriodTotals `json:"totals"`
	Employees []EmployeeKPI       `json:"employees"`
}

// Service computes KPI rankings.
type Service struct {
	log               *slog.Logger
	stats             statsRepo
	lowViewsThreshold int64
}

// NewService creates a new KPI service. A negative threshold falls back to
// the default; 0 flags no article as low.
func NewService(logger *slog.Logger, stats statsRepo, lowViewsThreshold int64) *Service {
	if lowViewsThreshold < 0 {
		lowViewsThreshold = domain.DefaultLowViewsThreshold
	}
	return &Service{
		log:               logger.With("service", "kpi"),
		stats:             stats,
		lowViewsThreshold: lowViewsThreshold,
	}
}

// Rankings computes per-employee KPIs for the period, ordered by efficiency
// rank then name.
func (s *Service) Rankings(ctx context.Context, p domain.Period) (*Rankings, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		stats  []domain.EmployeeStats
		totals domain.PeriodTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.stats.PeriodStats(gctx, p, s.lowViewsThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.stats.Totals(gctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load kpi data: %w", err)
	}

	rows := make([]EmployeeKPI, len(stats))
	for i, st := range stats {
		rows[i] = computeKPI(st)
	}

	denseRank(rows, func(k EmployeeKPI) float64 { return k.Efficiency }, func(k *EmployeeKPI, r int) { k.EfficiencyRank = r })
	denseRank(rows, func(k EmployeeKPI) float64 { return k.Pace }, func(k *EmployeeKPI, r int) { k.PaceRank = r })

	slices.SortStableFunc(rows, func(a, b EmployeeKPI) int {
		return cmp.Or(cmp.Compare(a.EfficiencyRank, b.EfficiencyRank), cmp.Compare(a.CanonicalName, b.CanonicalName))
	})

	s.log.DebugContext(ctx, "kpi rankings computed",
		slog.String("from", p.From.Format("2006-01-02")),
		slog.String("to", p.To.Format("2006-01-02")),
		slog.Int("employees", len(rows)),
	)

	return &Rankings{
		From:      p.From.Format("2006-01-02"),
		To:        p.To.Format("2006-01-02"),
		Totals:    totals,
		Employees: rows,
	}, nil
}

func computeKPI(st domain.EmployeeStats) EmployeeKPI {
	k := EmployeeKPI{
		EmployeeID:    st.EmployeeID,
		CanonicalName: st.CanonicalName,
		TotalHours:    st.TotalHours,
		DaysWorked:    st.DaysWorked,
		Articles:      st.Articles,
		LowViewCount:  st.LowViewCount,
		TotalViews:    st.TotalViews,
	}
	if st.Articles > 0 {
		k.AvgViews = float64(st.TotalViews) / float64(st.Articles)
	}
	if st.TotalHours > 0 {
		k.Pace = float64(st.Articles) / st.TotalHours * WorkdayHours
		k.Efficiency = float64(st.TotalViews) / st.TotalHours
	}
	return k
}

// denseRank assigns 1 to the highest value; equal values share a rank and the
// next distinct value gets the following integer.
func denseRank(rows []EmployeeKPI, value func(EmployeeKPI) float64, set func(*EmployeeKPI, int)) {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(value(rows[b]), value(rows[a]))
	})

	rank := 0
	for i, j := range idx {
		if i == 0 || value(rows[j]) != value(rows[idx[i-1]]) {
			rank++
		}
		set(&rows[j], rank)
	}
}
