package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/model"
)

// Renderer turns reports into files and console output
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer printing summaries to out
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(Markdown(report)), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// Markdown renders the report body
func Markdown(report *model.Report) string {
	var b strings.Builder
	st := report.Stats

	fmt.Fprintf(&b, "# ontomerge: %s\n\n", report.Operation)
	fmt.Fprintf(&b, "- **Input:** `%s`\n", report.Input)
	if report.Output != "" {
		fmt.Fprintf(&b, "- **Output:** `%s`\n", report.Output)
	}
	fmt.Fprintf(&b, "- **Reasoner:** %s\n", report.Reasoner)
	fmt.Fprintf(&b, "- **Started:** %s\n", report.StartedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Duration:** %d ms\n\n", report.DurationMS)

	b.WriteString("## Summary\n\n")
	b.WriteString("| | Before | After |\n|---|---:|---:|\n")
	fmt.Fprintf(&b, "| Classes | %d | %d |\n", st.NodesBefore, st.NodesAfter)
	fmt.Fprintf(&b, "| Edges | %d | %d |\n\n", st.EdgesBefore, st.EdgesAfter)

	switch report.Operation {
	case model.OpMergeEquivalentSets:
		fmt.Fprintf(&b, "Merged %d groups: %d classes absorbed, %d preserved, %d edges rewritten, %d dropped.\n\n",
			len(report.Groups), st.NodesAbsorbed, st.NodesPreserved, st.EdgesRewritten, st.EdgesDropped)
		if len(report.Groups) > 0 {
			b.WriteString("## Groups\n\n")
			b.WriteString("| Representative | Absorbed | Preserved |\n|---|---|---|\n")
			for _, g := range report.Groups {
				fmt.Fprintf(&b, "| `%s` | %s | %s |\n", g.Representative, codeList(g.Absorbed), codeList(g.Preserved))
			}
			b.WriteString("\n")
		}
	case model.OpMergeSpecies:
		fmt.Fprintf(&b, "Built %d copies: %d created, %d replaced.\n\n",
			len(report.Copies), st.CopiesCreated, st.CopiesReplaced)
		if len(report.Copies) > 0 {
			b.WriteString("## Copies\n\n")
			b.WriteString("| Original | Copy | Label |\n|---|---|---|\n")
			for _, c := range report.Copies {
				fmt.Fprintf(&b, "| `%s` | `%s` | %s |\n", c.Original, c.Copy, c.Label)
			}
			b.WriteString("\n")
		}
	}

	if len(report.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func codeList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "`" + id + "`"
	}
	return strings.Join(parts, ", ")
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(report *model.Report) {
	st := report.Stats
	fmt.Fprintf(r.out, "%s: %s\n", report.Operation, report.Input)
	fmt.Fprintf(r.out, "  classes %d -> %d, edges %d -> %d\n", st.NodesBefore, st.NodesAfter, st.EdgesBefore, st.EdgesAfter)
	switch report.Operation {
	case model.OpMergeEquivalentSets:
		fmt.Fprintf(r.out, "  groups %d, absorbed %d, preserved %d, edges rewritten %d, dropped %d\n",
			len(report.Groups), st.NodesAbsorbed, st.NodesPreserved, st.EdgesRewritten, st.EdgesDropped)
	case model.OpMergeSpecies:
		fmt.Fprintf(r.out, "  copies created %d, replaced %d\n", st.CopiesCreated, st.CopiesReplaced)
	}
	warnings := 0
	for _, s := range report.Signals {
		if s.Severity == model.SeverityWarning {
			warnings++
		}
	}
	if warnings > 0 {
		fmt.Fprintf(r.out, "  %d warnings, see report for details\n", warnings)
	}
}
