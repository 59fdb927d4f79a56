package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/medialaxis/pkg/evaluation"
	"github.com/matzehuels/medialaxis/pkg/pipeline"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorCmd    = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)
	// StyleValue renders values next to a label.
	StyleValue = lipgloss.NewStyle().Foreground(colorText)
	// StyleWarning renders warning text.
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel       = lipgloss.NewStyle().Foreground(colorMuted).Width(20)
	styleCommand     = lipgloss.NewStyle().Foreground(colorCmd)
	styleCached      = lipgloss.NewStyle().Foreground(colorOK)
	styleComputed    = lipgloss.NewStyle().Foreground(colorMuted)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	styleTableMethod = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)

// =============================================================================
// Status Lines
// =============================================================================

type mark struct {
	glyph string
	style lipgloss.Style
}

var (
	markOK   = mark{"✓", lipgloss.NewStyle().Foreground(colorOK)}
	markFail = mark{"✗", lipgloss.NewStyle().Foreground(colorFail)}
	markWarn = mark{"!", lipgloss.NewStyle().Foreground(colorWarn)}
	markInfo = mark{"›", lipgloss.NewStyle().Foreground(colorMuted)}
)

// status prints one line prefixed with m. body styles the message.
func status(m mark, body lipgloss.Style, format string, args ...any) {
	fmt.Println(m.style.Render(m.glyph) + " " + body.Render(fmt.Sprintf(format, args...)))
}

var plain = lipgloss.NewStyle()

func printSuccess(format string, args ...any) { status(markOK, plain, format, args...) }
func printError(format string, args ...any)   { status(markFail, plain, format, args...) }
func printWarning(format string, args ...any) { status(markWarn, StyleWarning, format, args...) }
func printInfo(format string, args ...any)    { status(markInfo, plain, format, args...) }

// printDetail prints an indented muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written output file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Skeleton Output
// =============================================================================

// printStats prints skeleton statistics on a single line.
func printStats(m evaluation.Metrics, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", m.Nodes),
		fmt.Sprintf("%d edges", m.Edges),
		fmt.Sprintf("%d branches", m.Branches),
	}

	origin, originStyle := "fresh", styleComputed
	if cached {
		origin, originStyle = "cached", styleCached
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			line.WriteString(StyleDim.Render(" · "))
		}
		line.WriteString(StyleDim.Render(part))
	}
	line.WriteString(StyleDim.Render(" · ") + originStyle.Render(origin))
	fmt.Println(line.String())
}

// printMetrics prints the evaluation of a skeleton.
func printMetrics(m evaluation.Metrics, tolerance float64) {
	printKeyValue("Area difference", fmt.Sprintf("%.2f%%", m.AreaDiffPct))
	printKeyValue("Hausdorff distance", fmt.Sprintf("%.4f", m.Hausdorff))
	if tolerance > 0 {
		printKeyValue("Tolerance", fmt.Sprintf("%.4f", tolerance))
	}
	printKeyValue("Nodes", strconv.Itoa(m.Nodes))
	printKeyValue("Branches", strconv.Itoa(m.Branches))
}

// sweepTable renders sweep points as a table, one row per point.
func sweepTable(pts []pipeline.SweepPoint) string {
	rows := make([][]string, len(pts))
	for i, p := range pts {
		rows[i] = []string{
			string(p.Method),
			fmtParam(p.Method, p.Param),
			strconv.Itoa(p.Metrics.Nodes),
			strconv.Itoa(p.Metrics.Branches),
			fmt.Sprintf("%.2f", p.Metrics.AreaDiffPct),
			fmt.Sprintf("%.3f", p.Metrics.Hausdorff),
			p.Duration.Round(time.Microsecond).String(),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("METHOD", "PARAM", "NODES", "BRANCHES", "AREA Δ %", "HAUSDORFF", "TIME").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleTableHeader
			case col == 0:
				return styleTableMethod
			default:
				return styleTableCell
			}
		})
	return t.String()
}

// fmtParam formats a sweep parameter; theta is shown in degrees.
func fmtParam(m pipeline.Method, v float64) string {
	if m == pipeline.MethodTheta {
		return fmt.Sprintf("%.0f°", v*180/math.Pi)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}
