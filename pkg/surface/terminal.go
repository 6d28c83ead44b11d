package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/scoring"
)

// TerminalRenderer renders results as styled terminal tables. Styling is
// dropped automatically when w is not a terminal or NO_COLOR is set.
type TerminalRenderer struct {
	// TopFeatures caps the per-feature listing of an importance breakdown.
	// Zero means 10.
	TopFeatures int
}

type palette struct {
	header lipgloss.Style
	dim    lipgloss.Style
	warn   lipgloss.Style
	low    lipgloss.Style
	medium lipgloss.Style
	high   lipgloss.Style
	bar    lipgloss.Style
}

func newPalette(w io.Writer) palette {
	re := lipgloss.NewRenderer(w)
	return palette{
		header: re.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		dim:    re.NewStyle().Foreground(lipgloss.Color("241")),
		warn:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		low:    re.NewStyle().Foreground(lipgloss.Color("42")),
		medium: re.NewStyle().Foreground(lipgloss.Color("220")),
		high:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		bar:    re.NewStyle().Foreground(lipgloss.Color("63")),
	}
}

func (p palette) risk(level scoring.RiskLevel) lipgloss.Style {
	switch level {
	case scoring.RiskHigh:
		return p.high
	case scoring.RiskMedium:
		return p.medium
	default:
		return p.low
	}
}

func (r *TerminalRenderer) Render(w io.Writer, result *scoring.Result) error {
	p := newPalette(w)

	fmt.Fprintf(w, "%s\n", p.header.Render(fmt.Sprintf("Invasion risk for %s", result.Species)))
	rd := result.Reading
	fmt.Fprintf(w, "%s\n\n", p.dim.Render(fmt.Sprintf(
		"model %s | pH %.2f  salinity %.2f ppt  DO %.2f mg/L  BOD %.2f mg/L  turbidity %.1f NTU  temp %.1f °C",
		result.Variant, rd.PH, rd.Salinity, rd.DissolvedOxygen, rd.BOD, rd.Turbidity, rd.Temperature)))

	fmt.Fprintf(w, "  %s\n", p.header.Render(fmt.Sprintf("%-18s %-6s %8s %10s %8s  %-7s %s",
		"Lake", "Region", "Raw", "Similarity", "Adjusted", "Risk", "Present")))
	for _, pr := range result.Predictions {
		fmt.Fprintf(w, "  %-18s %-6s %8.3f %10.3f %8.3f  %s %s\n",
			pr.LakeName, pr.Region, pr.RawScore, pr.Similarity, pr.AdjustedScore,
			p.risk(pr.RiskLevel).Render(fmt.Sprintf("%-7s", pr.RiskLevel)), pr.Presence)
	}
	fmt.Fprintln(w)

	if result.Warning != "" {
		fmt.Fprintf(w, "%s %s\n\n", p.warn.Render("Warning:"), result.Warning)
	}
	return nil
}

func (r *TerminalRenderer) RenderImportance(w io.Writer, result *importance.Result) error {
	p := newPalette(w)

	title := fmt.Sprintf("Parameter importance (%s, model %s)", result.Kind, result.Variant)
	fmt.Fprintf(w, "%s\n", p.header.Render(title))
	if result.Approximate {
		fmt.Fprintf(w, "%s\n", p.dim.Render("computed on a synthetic lake baseline; treat as approximate"))
	}
	fmt.Fprintln(w)

	entries := append([]importance.Entry{}, result.Parameters...)
	if result.Unmatched.FeatureCount > 0 {
		entries = append(entries, result.Unmatched)
	}
	for _, e := range entries {
		bar := strings.Repeat("█", int(e.Percentage/4))
		fmt.Fprintf(w, "  %-18s %6.1f%%  %3d features  %s\n",
			e.Parameter, e.Percentage, e.FeatureCount, p.bar.Render(bar))
	}
	fmt.Fprintln(w)

	if top, ok := result.MostContributing(); ok {
		fmt.Fprintf(w, "Most contributing: %s (%.1f%%)\n\n", p.header.Render(top.Parameter), top.Percentage)
	} else {
		fmt.Fprintf(w, "%s\n\n", p.dim.Render("The model attributes no importance to any feature."))
	}

	limit := r.TopFeatures
	if limit <= 0 {
		limit = 10
	}
	if len(result.Features) < limit {
		limit = len(result.Features)
	}
	if limit > 0 {
		fmt.Fprintln(w, "Top features:")
		for _, f := range result.Features[:limit] {
			fmt.Fprintf(w, "  %-40s %-18s %6.2f%%\n", f.Feature, p.dim.Render(fmt.Sprintf("%-18s", f.Parameter)), f.Percentage)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (r *TerminalRenderer) RenderSweep(w io.Writer, rows []scoring.SweepRow) error {
	p := newPalette(w)

	if len(rows) == 0 {
		fmt.Fprintln(w, "No species scored.")
		return nil
	}
	fmt.Fprintf(w, "  %s\n", p.header.Render(fmt.Sprintf("%-32s %-22s %-18s %8s  %s",
		"Species", "Common name", "Highest-risk lake", "Adjusted", "Risk")))
	for _, row := range rows {
		fmt.Fprintf(w, "  %-32s %-22s %-18s %8.3f  %s\n",
			truncate(row.Species, 32), truncate(row.CommonName, 22), row.LakeName, row.AdjustedScore,
			p.risk(row.RiskLevel).Render(string(row.RiskLevel)))
	}
	fmt.Fprintln(w)
	return nil
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
