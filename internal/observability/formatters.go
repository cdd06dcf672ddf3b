// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// assessmentPreview is how much of an assessment verbose mode shows
	assessmentPreview = 240
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTargetRecord outputs a human-readable summary of a resolved target.
func (p *Printer) PrintTargetRecord(record *types.TargetRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Identifier: %s\n", record.Identifier))
	if record.GeneSymbol != "" {
		sb.WriteString(fmt.Sprintf("Gene:       %s\n", record.GeneSymbol))
	}
	if record.ProteinName != "" {
		sb.WriteString(fmt.Sprintf("Protein:    %s\n", record.ProteinName))
	}
	if record.Organism != "" {
		sb.WriteString(fmt.Sprintf("Organism:   %s\n", record.Organism))
	}
	if record.SequenceLength > 0 {
		sb.WriteString(fmt.Sprintf("Length:     %d residues\n", record.SequenceLength))
	}

	if len(record.Bioactivity) > 0 {
		sb.WriteString("\nBioactivity targets:\n")
		count := min(len(record.Bioactivity), maxItemsToShow)
		for i := 0; i < count; i++ {
			hit := record.Bioactivity[i]
			sb.WriteString(fmt.Sprintf("  • %s", hit.ChemblID))
			if hit.PrefName != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", hit.PrefName))
			}
			sb.WriteString("\n")
		}
		if len(record.Bioactivity) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(record.Bioactivity)-maxItemsToShow))
		}
	}

	if len(record.Citations) > 0 {
		sb.WriteString(fmt.Sprintf("\nCitations:  %d PubMed references\n", len(record.Citations)))
	}
	if len(record.FailedSources) > 0 {
		sb.WriteString(fmt.Sprintf("\nFailed sources: %s\n", strings.Join(record.FailedSources, ", ")))
	}

	p.printBox("RESOLVED TARGET", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs the top generated molecules with scores.
func (p *Printer) PrintCandidates(candidates []types.CandidateMolecule) {
	if len(candidates) == 0 {
		return
	}

	ranked := types.RankCandidates(candidates)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d candidates:\n\n", len(ranked)))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		mol := ranked[i]
		smiles := mol.SMILES
		if len(smiles) > 40 {
			smiles = smiles[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %.3f  %s\n", mol.Rank, mol.Score, smiles))
	}

	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(ranked)-maxItemsToShow))
	}

	p.printBox("GENERATED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAssessment outputs the opening of the model's druggability briefing.
func (p *Printer) PrintAssessment(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	truncated := false
	if len(text) > assessmentPreview {
		text = text[:assessmentPreview]
		truncated = true
	}
	content := wrapText(text, boxWidth-4)
	if truncated {
		content += "\n..."
	}

	p.printBox("DRUGGABILITY ASSESSMENT", content)
}

// PrintRunSummary outputs per-stage outcomes and artifact paths for a
// finished run.
func (p *Printer) PrintRunSummary(run *types.PipelineRun, artifacts map[types.ArtifactKind]string) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:    %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Target: %s\n\n", run.TargetID))

	for _, stage := range run.Stages {
		switch stage.Status {
		case types.StageCompleted:
			sb.WriteString(fmt.Sprintf("✓ %s\n", stage.Name))
		case types.StageSkipped:
			sb.WriteString(fmt.Sprintf("• %s: %s\n", stage.Name, stage.SkipReason))
		case types.StageFailed:
			sb.WriteString(fmt.Sprintf("⚠ %s: %s\n", stage.Name, stage.Error))
		}
	}

	if len(artifacts) > 0 {
		kinds := make([]string, 0, len(artifacts))
		for kind := range artifacts {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)

		sb.WriteString("\nArtifacts:\n")
		for _, kind := range kinds {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", kind, artifacts[types.ArtifactKind(kind)]))
		}
	}

	p.printBox("PIPELINE RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// wrapText breaks a single paragraph into lines no wider than width.
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				sb.WriteString("\n")
				lineLen = 0
			} else {
				sb.WriteString(" ")
				lineLen++
			}
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
