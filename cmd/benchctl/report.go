package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/benchkit/benchkit"
)

// reportStyles mirrors the small, semantic palette the corpus's CLI layers use
// for status output: a header style, a muted style for secondary text,
// and ok/warn styles for pass/fail rows.
var reportStyles = struct {
	Header lipgloss.Style
	Name   lipgloss.Style
	Muted  lipgloss.Style
	OK     lipgloss.Style
	Warn   lipgloss.Style
}{
	Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
	Name:   lipgloss.NewStyle().Bold(true),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
}

const reportRowFormat = "%-24s %14s %12s %10s %8s\n"

// renderReport formats a finished suite's results as a plain-column table,
// styled with lipgloss: one row per benchmark, hz/RME/sample-count/status.
func renderReport(results []*benchkit.Benchmark) string {
	var b strings.Builder

	header := fmt.Sprintf(reportRowFormat, "NAME", "HZ", "±RME", "SAMPLES", "STATUS")
	b.WriteString(reportStyles.Header.Render(strings.TrimRight(header, "\n")))
	b.WriteString("\n")

	for _, bm := range results {
		status := reportStyles.OK.Render("ok")
		if bm.Error != nil {
			status = reportStyles.Warn.Render(bm.Error.Kind.String())
		}

		hz := "-"
		rme := "-"
		if bm.Stats.N() > 0 {
			hz = formatHz(bm.Hz)
			rme = fmt.Sprintf("%.2f%%", bm.Stats.RME)
		}

		row := fmt.Sprintf(reportRowFormat,
			bm.Name, hz, rme, fmt.Sprintf("%d", bm.Stats.N()), "")
		row = strings.TrimSuffix(row, "\n")
		b.WriteString(reportStyles.Name.Render(padName(bm.Name)))
		b.WriteString(row[len(padName(bm.Name)):])
		b.WriteString(" ")
		b.WriteString(status)
		b.WriteString("\n")
	}

	return b.String()
}

func padName(name string) string {
	return fmt.Sprintf("%-24s", name)
}

func formatHz(hz float64) string {
	switch {
	case hz >= 1e9:
		return fmt.Sprintf("%.2fG", hz/1e9)
	case hz >= 1e6:
		return fmt.Sprintf("%.2fM", hz/1e6)
	case hz >= 1e3:
		return fmt.Sprintf("%.2fK", hz/1e3)
	default:
		return fmt.Sprintf("%.2f", hz)
	}
}

// renderCompare formats a two-benchmark comparison as a single styled line.
func renderCompare(a, b *benchkit.Benchmark) string {
	result := a.Compare(b)
	switch result {
	case 1:
		return reportStyles.OK.Render(fmt.Sprintf("%s is faster than %s", a.Name, b.Name))
	case -1:
		return reportStyles.OK.Render(fmt.Sprintf("%s is faster than %s", b.Name, a.Name))
	default:
		return reportStyles.Muted.Render(fmt.Sprintf("%s and %s are statistically indistinguishable", a.Name, b.Name))
	}
}
