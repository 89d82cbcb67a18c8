// Package report renders recommendations as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/myrjola/nextlift/internal/recommend"
)

// Renderer converts Markdown to HTML. Raw HTML in the input is dropped. It is safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GitHub flavoured tables.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

// ToHTML converts markdown to an HTML fragment.
func (r *Renderer) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// HTML renders rec as an HTML fragment.
func (r *Renderer) HTML(rec recommend.Recommendation) (string, error) {
	return r.ToHTML(Markdown(rec))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatKg(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64) + " kg"
}

// StatusLabel turns a status such as insufficient_data into "Insufficient data".
func StatusLabel(s recommend.Status) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// Markdown renders rec as a Markdown document: a headline, the prescription table, the rationale,
// the reasoning breakdown and finally benchmark instructions and flags when present.
func Markdown(rec recommend.Recommendation) string {
	var b strings.Builder
	p := rec.Prescription

	fmt.Fprintf(&b, "# %s: next session\n\n", escape(rec.Exercise))
	fmt.Fprintf(&b, "**%s** · %s phase\n\n", StatusLabel(rec.TrainingStatus), escape(string(rec.Phase)))

	target := "-"
	if p.TargetReps != nil {
		target = strconv.Itoa(*p.TargetReps)
	}
	weight := "choose a challenging load"
	if p.WeightKg != nil {
		weight = formatKg(*p.WeightKg)
	}
	b.WriteString("| Sets | Reps | Target reps | Weight | Rest | Effort |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %d s | %d RIR |\n\n",
		p.Sets, p.Reps, target, weight, p.RestSeconds, p.EffortMarginTarget)

	if rec.CalculatedEstimate > 0 {
		fmt.Fprintf(&b, "Estimated max %s", formatKg(rec.CalculatedEstimate))
		if rec.IntensityPercent != nil {
			fmt.Fprintf(&b, " · intensity %s%%", strconv.FormatFloat(*rec.IntensityPercent, 'f', -1, 64))
		}
		b.WriteString("\n\n")
	}

	if rec.Rationale != "" {
		fmt.Fprintf(&b, "%s\n\n", escape(rec.Rationale))
	}

	r := rec.ReasoningBreakdown
	b.WriteString("## Reasoning\n\n")
	for _, item := range []struct{ label, text string }{
		{"Last session", r.LastSession},
		{"Trend", r.Trend},
		{"Next step", r.NextStep},
		{"Calculation", r.Calculation},
	} {
		if item.text == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", item.label, escape(item.text))
	}
	b.WriteString("\n")

	if len(p.BenchmarkInstructions) > 0 {
		b.WriteString("## Benchmark\n\n")
		for i, step := range p.BenchmarkInstructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, escape(step))
		}
		b.WriteString("\n")
	}

	if len(rec.Flags) > 0 {
		b.WriteString("## Flags\n\n")
		for _, f := range rec.Flags {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}

	return b.String()
}
