// Package report synthesizes the Markdown discovery report from a pipeline run.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

const (
	// tableLimit caps the candidate table at the highest-scoring entries.
	tableLimit = 10
	// assessmentLimit bounds the assessment section so report size stays predictable.
	assessmentLimit = 2000
	// smilesLimit keeps table cells readable for long candidate strings.
	smilesLimit = 40
)

// reportData is the flattened view of a run handed to the report template.
// Every field is optional except Target, Generated, and Stages; the builder
// fills placeholders so the template never dereferences missing data.
type reportData struct {
	Target     string
	Generated  string
	Gene       string
	Protein    string
	Organism   string
	Length     string
	Function   string
	Structure  *structureInfo
	Ligands    *ligandInfo
	Assessment string
	Visuals    []artifactRef
	Stages     []string
}

type structureInfo struct {
	Method  string
	PDBFile string
}

type ligandInfo struct {
	Method   string
	Seed     string
	Property string
	Rows     []types.CandidateMolecule
}

type artifactRef struct {
	Kind string
	Path string
}

const reportTemplate = `# Drug Discovery Report: {{.Target}}
Generated: {{.Generated}}

## Target Information
- **Gene**: {{.Gene}}
- **Protein**: {{.Protein}}
- **Organism**: {{.Organism}}
- **Length**: {{.Length}} residues
{{if .Function}}
{{.Function}}
{{end}}{{if .Structure}}
## Structure Prediction
- **Method**: {{.Structure.Method}}
- **PDB File**: {{.Structure.PDBFile}}
{{end}}{{if .Ligands}}
## Generated Ligands
- **Method**: {{.Ligands.Method}}
- **Seed**: {{.Ligands.Seed}}
- **Property Optimized**: {{.Ligands.Property}}

| Rank | SMILES | QED Score |
|------|--------|-----------|
{{range .Ligands.Rows}}| {{.Rank}} | {{truncate .SMILES 40}} | {{score .Score}} |
{{end}}{{end}}{{if .Assessment}}
## AI Druggability Assessment

{{.Assessment}}
{{end}}{{if .Visuals}}
## Visualizations
{{range .Visuals}}- **{{.Kind}}**: {{.Path}}
{{end}}{{end}}
## Pipeline Stages
{{range .Stages}}- {{.}}
{{end}}`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"truncate": truncateText,
	"score":    formatScore,
}).Parse(reportTemplate))

// Synthesize renders the discovery report for a run. It is a pure function
// of the run's recorded stages: sections for stages that did not complete
// are omitted, and the trailing stage summary accounts for every stage, so
// synthesis succeeds no matter which subset of the pipeline ran.
func Synthesize(run *types.PipelineRun) string {
	var out strings.Builder
	if err := reportTmpl.Execute(&out, buildReportData(run)); err != nil {
		return fmt.Sprintf("# Drug Discovery Report: %s\n", run.TargetID)
	}
	return out.String()
}

func buildReportData(run *types.PipelineRun) *reportData {
	data := &reportData{
		Target:    run.TargetID,
		Generated: run.StartedAt.Format(time.RFC3339),
		Gene:      "N/A",
		Protein:   "N/A",
		Organism:  "N/A",
		Length:    "N/A",
	}

	if payload := run.Payload(types.StageTargetResolution); payload != nil {
		if record := types.TargetFromPayload(payload[types.PayloadTarget]); record != nil {
			if record.GeneSymbol != "" {
				data.Gene = record.GeneSymbol
			}
			if record.ProteinName != "" {
				data.Protein = record.ProteinName
			}
			if record.Organism != "" {
				data.Organism = record.Organism
			}
			if record.SequenceLength > 0 {
				data.Length = strconv.Itoa(record.SequenceLength)
			}
			data.Function = strings.TrimSpace(record.FunctionSummary)
		}
	}

	if payload := run.Payload(types.StageStructurePrediction); payload != nil {
		data.Structure = &structureInfo{
			Method:  stringOr(types.PayloadString(payload, types.PayloadMethod), "ESMFold (NVIDIA NIM)"),
			PDBFile: stringOr(types.PayloadString(payload, types.PayloadPDBFile), "N/A"),
		}
	}

	if payload := run.Payload(types.StageMoleculeGeneration); payload != nil {
		candidates := types.CandidatesFromPayload(payload[types.PayloadMolecules])
		if len(candidates) > 0 {
			ranked := types.RankCandidates(candidates)
			if len(ranked) > tableLimit {
				ranked = ranked[:tableLimit]
			}
			data.Ligands = &ligandInfo{
				Method:   stringOr(types.PayloadString(payload, types.PayloadMethod), "MolMIM (NVIDIA NIM)"),
				Seed:     stringOr(types.PayloadString(payload, types.PayloadSeed), "N/A"),
				Property: stringOr(types.PayloadString(payload, types.PayloadProperty), "QED"),
				Rows:     ranked,
			}
		}
	}

	if payload := run.Payload(types.StageAssessment); payload != nil {
		data.Assessment = truncateText(types.PayloadString(payload, types.PayloadAssessment), assessmentLimit)
	}

	if payload := run.Payload(types.StageVisualization); payload != nil {
		files := types.FilesFromPayload(payload[types.PayloadFiles])
		kinds := make([]string, 0, len(files))
		for kind := range files {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			data.Visuals = append(data.Visuals, artifactRef{Kind: kind, Path: files[kind]})
		}
	}

	for _, result := range run.Stages {
		data.Stages = append(data.Stages, stageLine(result))
	}

	return data
}

func stageLine(result types.StageResult) string {
	switch result.Status {
	case types.StageSkipped:
		return fmt.Sprintf("%s: skipped (%s)", result.Name, result.SkipReason)
	case types.StageFailed:
		return fmt.Sprintf("%s: failed (%s)", result.Name, result.Error)
	default:
		return fmt.Sprintf("%s: completed", result.Name)
	}
}

// truncateText bounds s to limit runes without adding an ellipsis, matching
// the fixed-width table cells in the rendered report.
func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
