package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/datajobs/jobmarket/internal/analyze"
	"github.com/datajobs/jobmarket/internal/forecast"
)

// Output file names, one per chart.
const (
	categoriesFile = "job_categories_analysis.png"
	salaryFile     = "salary_distribution_analysis.png"
	timelineFile   = "job_market_timeline.png"
)

// Renderer writes PNG charts into a fixed directory.
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer targeting dir. The directory is created on
// the first render.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render draws every chart the summary supports: category bars always, the
// salary histogram when salaries exist, the timeline when monthly buckets
// exist (with a trend line when a fit was produced). Any write failure is
// fatal to the run.
func (r *Renderer) Render(s analyze.Summary, salaries []float64, fc *forecast.Forecast) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating charts dir: %w", err)
	}

	if err := r.topCategories(s.TopCategories); err != nil {
		return err
	}
	if len(salaries) > 0 && s.Salary != nil {
		if err := r.salaryDistribution(salaries, s.Salary); err != nil {
			return err
		}
	}
	if len(s.Monthly) > 0 {
		if err := r.monthlyTimeline(s.Monthly, fc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) topCategories(entries []analyze.FreqEntry) error {
	p := plot.New()
	p.Title.Text = "Top Job Categories"
	p.Y.Label.Text = "Number of Job Postings"

	values := make(plotter.Values, len(entries))
	names := make([]string, len(entries))
	for i, e := range entries {
		values[i] = float64(e.Count)
		names[i] = e.Name
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("building category bars: %w", err)
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = draw.XRight

	return r.save(p, 12*vg.Inch, 6*vg.Inch, categoriesFile)
}

func (r *Renderer) salaryDistribution(salaries []float64, stats *analyze.SalaryStats) error {
	p := plot.New()
	p.Title.Text = "Salary Distribution"
	p.X.Label.Text = "Annual Salary (USD)"
	p.Y.Label.Text = "Number of Job Postings"

	hist, err := plotter.NewHist(plotter.Values(salaries), 50)
	if err != nil {
		return fmt.Errorf("building salary histogram: %w", err)
	}
	p.Add(hist)

	// Mean and median markers.
	top := histHeight(hist)
	meanLine, err := verticalLine(stats.Mean, top)
	if err != nil {
		return fmt.Errorf("building mean marker: %w", err)
	}
	medianLine, err := verticalLine(stats.Median, top)
	if err != nil {
		return fmt.Errorf("building median marker: %w", err)
	}
	medianLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(meanLine, medianLine)
	p.Legend.Add(fmt.Sprintf("mean $%.0f", stats.Mean), meanLine)
	p.Legend.Add(fmt.Sprintf("median $%.0f", stats.Median), medianLine)
	p.Legend.Top = true

	return r.save(p, 10*vg.Inch, 6*vg.Inch, salaryFile)
}

func (r *Renderer) monthlyTimeline(monthly []analyze.MonthBucket, fc *forecast.Forecast) error {
	p := plot.New()
	p.Title.Text = "Job Market Trends Over Time"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Number of Job Postings"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	pts := make(plotter.XYs, len(monthly))
	for i, bucket := range monthly {
		pts[i].X = float64(bucket.Month.Unix())
		pts[i].Y = float64(bucket.Count)
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("building timeline: %w", err)
	}
	p.Add(line, points)
	p.Legend.Add("postings", line, points)

	if fc != nil {
		trend := make(plotter.XYs, len(monthly))
		for i := range monthly {
			trend[i].X = float64(monthly[i].Month.Unix())
			trend[i].Y = fc.Intercept + fc.Slope*float64(i)
		}
		trendLine, err := plotter.NewLine(trend)
		if err != nil {
			return fmt.Errorf("building trend line: %w", err)
		}
		trendLine.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(trendLine)
		p.Legend.Add(fmt.Sprintf("trend %+.0f/month", fc.Slope), trendLine)
	}
	p.Legend.Top = true

	return r.save(p, 14*vg.Inch, 6*vg.Inch, timelineFile)
}

func (r *Renderer) save(p *plot.Plot, w, h vg.Length, name string) error {
	path := filepath.Join(r.dir, name)
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("saving chart %s: %w", name, err)
	}
	return nil
}

// verticalLine builds a two-point line at x from y=0 to y=top, used as a
// statistic marker over the histogram.
func verticalLine(x, top float64) (*plotter.Line, error) {
	return plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
}

func histHeight(h *plotter.Histogram) float64 {
	_, _, _, top := h.DataRange()
	return top
}
