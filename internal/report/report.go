package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/datajobs/jobmarket/internal/analyze"
	"github.com/datajobs/jobmarket/internal/clean"
	"github.com/datajobs/jobmarket/internal/forecast"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // bright blue

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // green

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dim gray
)

// comma-grouped number printing, e.g. 785741 -> 785,741
var printer = message.NewPrinter(language.English)

// Render builds the console insights summary shown at the end of a run.
func Render(cleaned clean.Result, s analyze.Summary, fc *forecast.Forecast) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("JOB MARKET ANALYSIS"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Market overview"))
	b.WriteString("\n")
	writeMetric(&b, "Postings analyzed", countStr(s.Overview.TotalPostings))
	writeMetric(&b, "Duplicates removed", countStr(cleaned.Duplicates))
	writeMetric(&b, "Unique companies", countStr(s.Overview.Companies))
	writeMetric(&b, "Unique locations", countStr(s.Overview.Locations))
	writeMetric(&b, "Distinct job titles", countStr(s.Overview.Titles))

	if s.Salary != nil {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Salary intelligence"))
		b.WriteString("\n")
		writeMetric(&b, "Average", dollarStr(s.Salary.Mean))
		writeMetric(&b, "Median", dollarStr(s.Salary.Median))
		writeMetric(&b, "25th percentile", dollarStr(s.Salary.P25))
		writeMetric(&b, "75th percentile", dollarStr(s.Salary.P75))
		writeMetric(&b, "Range", dollarStr(s.Salary.Min)+" - "+dollarStr(s.Salary.Max))
		writeMetric(&b, "Std deviation", dollarStr(s.Salary.StdDev))
		b.WriteString(dimStyle.Render(printer.Sprintf("  based on %d postings with salary data", s.Salary.Count)))
		b.WriteString("\n")
	}

	writeFreqSection(&b, "Top job categories", s.TopCategories)
	writeFreqSection(&b, "Geographic distribution", s.TopLocations)
	writeFreqSection(&b, "Top hiring companies", s.TopCompanies)

	if fc != nil {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Market forecast (next 6 months)"))
		b.WriteString("\n")
		trend := "declining"
		if fc.Growing() {
			trend = "growing"
		}
		writeMetric(&b, "Trend", fmt.Sprintf("%s (%+.0f postings/month)", trend, fc.Slope))
		writeMetric(&b, "Model fit", fmt.Sprintf("linear regression, R² = %.3f", fc.R2))
		for _, p := range fc.Points {
			writeMetric(&b, p.Month.Format("2006-01"), printer.Sprintf("%d projected postings", int64(p.Projected+0.5)))
		}
	}

	return b.String()
}

func writeFreqSection(b *strings.Builder, heading string, entries []analyze.FreqEntry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(heading))
	b.WriteString("\n")
	for i, e := range entries {
		line := printer.Sprintf("  %2d. %s  %d postings (%.1f%%)", i+1, valueStyle.Render(e.Name), e.Count, e.Percent)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeMetric(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render("  " + label + ": "))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

func countStr(n int) string {
	return printer.Sprintf("%d", n)
}

func dollarStr(v float64) string {
	return printer.Sprintf("$%d", int64(v+0.5))
}
