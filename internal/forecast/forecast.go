package forecast

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/datajobs/jobmarket/internal/analyze"
)

// MinBuckets is the fewest monthly buckets an OLS fit needs to be worth
// anything; below it the forecaster does not run.
const MinBuckets = 6

// Horizon is how many future months are projected.
const Horizon = 6

// Point is one projected month.
type Point struct {
	Month     time.Time
	Projected float64
}

// Forecast is a closed-form OLS line over month index → posting count, plus
// its projection.
type Forecast struct {
	Slope     float64 // postings per month
	Intercept float64
	R2        float64 // coefficient of determination
	Points    []Point // Horizon future months, ascending
}

// Growing reports whether the projection trends upward over the horizon.
func (f *Forecast) Growing() bool {
	if len(f.Points) < 2 {
		return false
	}
	return f.Points[len(f.Points)-1].Projected > f.Points[0].Projected
}

// Project fits counts against the month index 0,1,2,… and projects Horizon
// months past the last bucket. Returns nil (no output, no error) when fewer
// than MinBuckets buckets exist.
func Project(monthly []analyze.MonthBucket) *Forecast {
	if len(monthly) < MinBuckets {
		return nil
	}

	xs := make([]float64, len(monthly))
	ys := make([]float64, len(monthly))
	for i, bucket := range monthly {
		xs[i] = float64(i)
		ys[i] = float64(bucket.Count)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	estimates := make([]float64, len(xs))
	for i, x := range xs {
		estimates[i] = intercept + slope*x
	}
	r2 := stat.RSquaredFrom(estimates, ys, nil)

	f := &Forecast{
		Slope:     slope,
		Intercept: intercept,
		R2:        r2,
		Points:    make([]Point, 0, Horizon),
	}

	lastMonth := monthly[len(monthly)-1].Month
	for i := 0; i < Horizon; i++ {
		x := float64(len(monthly) + i)
		f.Points = append(f.Points, Point{
			Month:     lastMonth.AddDate(0, i+1, 0),
			Projected: intercept + slope*x,
		})
	}
	return f
}
