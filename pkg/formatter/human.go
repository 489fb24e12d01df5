package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/helmcode/pr-impact/pkg/checklist"
	"github.com/helmcode/pr-impact/pkg/model"
)

const lineWidth = 80

func displayHuman(w io.Writer, v View) {
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)
	faint := color.New(color.FgHiBlack)

	report := v.Report
	if report == nil {
		fmt.Fprintln(w)
		white.Fprintln(w, "📋 No analysis yet")
		fmt.Fprintln(w, "   Enter PR details and run 'pr-impact analyze' to see results")
		return
	}

	fmt.Fprintln(w)
	cyan.Fprint(w, "📋 TEST CASES CHECKLIST")
	fmt.Fprint(w, "   Overall Risk: ")
	fmt.Fprintln(w, riskBadge(report.OverallRisk))
	fmt.Fprintf(w, "   %s\n\n", ProgressLine(v.Progress, 20))

	if report.Summary != "" {
		fmt.Fprintln(w, wrapText(report.Summary, lineWidth, "   "))
		fmt.Fprintln(w)
	}

	if report.ChatQuery != "" {
		cyan.Fprintln(w, "💬 QUERY:")
		fmt.Fprintln(w, wrapText(report.ChatQuery, lineWidth, "   "))
		fmt.Fprintln(w)
	}

	if v.Identity == "" {
		faint.Fprintln(w, "   (this report has no QA scenarios; checklist disabled)")
		fmt.Fprintln(w)
	}
	for _, sc := range report.QAScenarios {
		displayScenario(w, sc, v.isCompleted(sc.ID), v.expanded[sc.ID])
	}

	displayImpact(w, report)

	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run 'pr-impact toggle <id>' to check off a test case, or 'pr-impact review' for the interactive checklist"))
}

func displayScenario(w io.Writer, sc model.QAScenario, done, expanded bool) {
	box := "[ ]"
	title := color.New(color.Bold).Sprint(sc.Title)
	if done {
		box = color.GreenString("[x]")
		title = color.New(color.FgHiBlack, color.CrossedOut).Sprint(sc.Title)
	}
	fmt.Fprintf(w, "   %s %s  %s  %s\n", box, color.BlueString(sc.ID), title, riskBadge(sc.Risk))
	if sc.Objective != "" {
		fmt.Fprintln(w, wrapText(sc.Objective, lineWidth, "         "))
	}
	if len(sc.Tags) > 0 {
		tags := make([]string, len(sc.Tags))
		for i, tag := range sc.Tags {
			tags[i] = "#" + tag
		}
		fmt.Fprintf(w, "         %s\n", color.CyanString(strings.Join(tags, " ")))
	}

	if expanded {
		if len(sc.Steps) > 0 {
			fmt.Fprintln(w, "         Test Steps:")
			for i, step := range sc.Steps {
				fmt.Fprintf(w, "           %d. %s\n", i+1, step)
			}
		}
		if sc.Expected != "" {
			fmt.Fprintln(w, "         Expected Result:")
			fmt.Fprintln(w, colorLines(color.New(color.FgGreen), wrapText(sc.Expected, lineWidth, "           ")))
		}
	}
	fmt.Fprintln(w)
}

func displayImpact(w io.Writer, report *model.AnalysisReport) {
	magenta := color.New(color.FgMagenta, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	magenta.Fprintln(w, "⚡ FUNCTIONAL IMPACT")

	white.Fprintln(w, "   Features Impacted:")
	for _, f := range report.FeaturesImpacted {
		fmt.Fprintf(w, "     ✓ %s\n", f)
	}
	white.Fprintln(w, "   Modules Impacted:")
	for _, m := range report.ModulesImpacted {
		fmt.Fprintf(w, "     ✓ %s\n", m)
	}

	white.Fprintln(w, "   Code Files Impacted:")
	files := make([]string, 0, len(report.CodeSymbolsImpacted))
	for file := range report.CodeSymbolsImpacted {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		syms := report.CodeSymbolsImpacted[file]
		if syms.Unknown() {
			fmt.Fprintf(w, "     • %s %s\n", file, color.HiBlackString("(unknown symbols)"))
			continue
		}
		fmt.Fprintf(w, "     • %s %s\n", file, color.HiBlackString("(%s)", strings.Join(syms, ", ")))
	}

	white.Fprintln(w, "   Risk Hotspots:")
	for _, h := range report.RiskHotspots {
		fmt.Fprintf(w, "     %s %s  Severity: %s  Likelihood: %s\n",
			getSeverityIcon(h.Severity), h.File, h.Severity, h.Likelihood)
		if h.Reason != "" {
			fmt.Fprintln(w, wrapText(h.Reason, lineWidth, "        "))
		}
	}
	fmt.Fprintln(w)
}

// ProgressLine renders a text progress bar followed by the completion count.
func ProgressLine(p checklist.Progress, width int) string {
	filled := width * p.Percent / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%  %d of %d completed", color.BlueString(bar), p.Percent, p.Completed, p.Total)
}

func riskBadge(l model.Level) string {
	c := getSeverityColor(l)
	return c.Sprintf("%s %s", getSeverityIcon(l), strings.ToUpper(string(l)))
}

func getSeverityColor(l model.Level) *color.Color {
	switch l {
	case model.LevelHigh:
		return color.New(color.FgRed, color.Bold)
	case model.LevelMedium:
		return color.New(color.FgYellow)
	case model.LevelLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgBlue)
	}
}

func getSeverityIcon(l model.Level) string {
	switch l {
	case model.LevelHigh:
		return "🔴"
	case model.LevelMedium:
		return "🟡"
	case model.LevelLow:
		return "🟢"
	default:
		return "🔵"
	}
}

// colorLines paints each line of already wrapped text, leaving the indent
// plain so escape codes never count toward the wrap width.
func colorLines(c *color.Color, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		body := strings.TrimLeft(line, " ")
		if body == "" {
			continue
		}
		lines[i] = line[:len(line)-len(body)] + c.Sprint(body)
	}
	return strings.Join(lines, "\n")
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
