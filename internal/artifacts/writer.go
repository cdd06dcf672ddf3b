// Package artifacts persists pipeline outputs under a configurable output root.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// DefaultOutputDir is where artifacts land when no output location is given.
const DefaultOutputDir = "./pipeline_results"

// timestampLayout suffixes run dumps so repeated runs never collide.
const timestampLayout = "20060102_150405"

// Writer persists run artifacts. Structure and report files use a stable
// per-target name so the latest result is always at a known path; the full
// run dump is timestamp-suffixed so historical runs coexist.
type Writer struct {
	OutputDir string
}

// NewWriter returns a Writer rooted at outputDir, falling back to
// DefaultOutputDir when empty.
func NewWriter(outputDir string) *Writer {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Writer{OutputDir: outputDir}
}

// WriteStructure saves a predicted structure as {target}_predicted.pdb,
// overwriting any previous prediction for the same target.
func (w *Writer) WriteStructure(targetID, pdb string) (string, error) {
	return w.write(fmt.Sprintf("%s_predicted.pdb", targetID), []byte(pdb))
}

// WriteReport saves the synthesized Markdown report as {target}_report.md,
// overwriting any previous report for the same target.
func (w *Writer) WriteReport(targetID, markdown string) (string, error) {
	return w.write(fmt.Sprintf("%s_report.md", targetID), []byte(markdown))
}

// WriteRunDump serializes the full run, stage results included, as
// {target}_pipeline_{timestamp}.json keyed by the run's start time.
func (w *Writer) WriteRunDump(run *types.PipelineRun) (string, error) {
	jsonBytes, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}
	name := fmt.Sprintf("%s_pipeline_%s.json", run.TargetID, run.StartedAt.Format(timestampLayout))
	return w.write(name, jsonBytes)
}

// WriteRendering saves a visualization document at its stable per-target
// name, overwriting any previous rendering of the same kind.
func (w *Writer) WriteRendering(targetID string, kind types.ArtifactKind, content string) (string, error) {
	var name string
	switch kind {
	case types.ArtifactMoleculeGrid:
		name = fmt.Sprintf("%s_molecules.html", targetID)
	case types.ArtifactStructureView:
		name = fmt.Sprintf("%s_structure.html", targetID)
	case types.ArtifactScoreChart:
		name = fmt.Sprintf("%s_scores.svg", targetID)
	default:
		return "", fmt.Errorf("unknown rendering kind %q", kind)
	}
	return w.write(name, []byte(content))
}

func (w *Writer) write(name string, content []byte) (string, error) {
	if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(w.OutputDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}
