// Package pipeline orchestrates the end-to-end discovery workflow: target
// resolution, structure prediction, molecule generation, druggability
// assessment, report synthesis, and visualization.
//
// A run walks the six stages in fixed order and records exactly one result
// per stage. Stage failures are recorded on the run, never propagated: the
// pipeline always reaches the end, and the report and run dump reflect
// whatever each stage produced.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/MichaelCrowe11/CroweLM/internal/nim"
	"github.com/MichaelCrowe11/CroweLM/internal/observability"
	"github.com/MichaelCrowe11/CroweLM/internal/report"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// DefaultFoldCeiling is the longest sequence sent for structure prediction.
// ESMFold latency grows steeply with length; longer sequences skip the
// stage and the rest of the pipeline proceeds without a structure.
const DefaultFoldCeiling = 400

// DefaultCandidateCount is the number of molecules requested when the
// caller does not specify one.
const DefaultCandidateCount = 10

// totalSteps is the stage count shown in progress lines.
const totalSteps = 6

// Method labels recorded in stage payloads and rendered in reports.
const (
	structureMethod = "ESMFold (NVIDIA NIM)"
	moleculeMethod  = "MolMIM (NVIDIA NIM)"
	propertyName    = "QED"
)

// Resolver enriches target identifiers into records. Resolution degrades
// instead of failing: an unresolvable identifier yields a record carrying
// only the identifier.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) *types.TargetRecord
	ResolveSequence(sequence string) *types.TargetRecord
}

// Folder predicts a protein structure from a sequence, returning PDB text.
type Folder interface {
	PredictStructure(ctx context.Context, sequence string) (string, error)
}

// Generator produces scored candidate molecules.
type Generator interface {
	GenerateMolecules(ctx context.Context, req nim.GenerateRequest) ([]types.CandidateMolecule, error)
}

// Assessor produces a druggability briefing for a target.
type Assessor interface {
	Assess(ctx context.Context, subject string) (string, error)
	Model() string
}

// Writer persists run artifacts under the output directory.
type Writer interface {
	WriteStructure(targetID, pdb string) (string, error)
	WriteReport(targetID, markdown string) (string, error)
	WriteRunDump(run *types.PipelineRun) (string, error)
	WriteRendering(targetID string, kind types.ArtifactKind, content string) (string, error)
}

// Renderer builds visualization documents. Availability is queried once
// per run; an unavailable renderer skips the visualization stage.
type Renderer interface {
	Available() bool
	MoleculeGridHTML(targetID string, candidates []types.CandidateMolecule) string
	StructureViewerHTML(targetID, pdb string) string
	ScoreChartSVG(targetID string, candidates []types.CandidateMolecule) string
}

// Store persists runs and stage results as they happen. Store failures
// never interrupt a run; they are logged and the run continues with file
// artifacts only.
type Store interface {
	CreateRun(ctx context.Context, run *types.PipelineRun) error
	SaveStageResult(ctx context.Context, runID uuid.UUID, result types.StageResult) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// Uploader copies finished artifacts to object storage.
type Uploader interface {
	Upload(ctx context.Context, runID, path string) (string, error)
}

// Deps carries the pipeline's collaborators. Resolver, Folder, Generator,
// Assessor, and Writer are required; Renderer, Store, and Uploader are
// optional and nil disables the corresponding behavior.
type Deps struct {
	Resolver  Resolver
	Folder    Folder
	Generator Generator
	Assessor  Assessor
	Writer    Writer
	Renderer  Renderer
	Store     Store
	Uploader  Uploader
}

// ProgressEvent reports a stage outcome as the run advances.
type ProgressEvent struct {
	RunID   string             `json:"run_id,omitempty"`
	Stage   types.StageName    `json:"stage"`
	Status  types.StageStatus  `json:"status"`
	Message string             `json:"message,omitempty"`
	Result  *types.StageResult `json:"result,omitempty"`
}

// ProgressCallback receives progress events during a run. Callbacks run on
// the pipeline goroutine and should return quickly.
type ProgressCallback func(event ProgressEvent)

// Options control a single run.
type Options struct {
	Run         types.RunOptions
	Generation  nim.GenerateRequest // base generation parameters, e.g. from a profile
	FoldCeiling int                 // residues; 0 means DefaultFoldCeiling
	Seed        string              // seed SMILES; "" picks the profile or mode default
	Verbose     bool
	OnProgress  ProgressCallback
}

// Result bundles a finished run with the artifacts it produced.
type Result struct {
	Run       *types.PipelineRun            `json:"run"`
	Artifacts map[types.ArtifactKind]string `json:"artifacts,omitempty"`
}

// Pipeline executes discovery runs against a fixed set of collaborators.
type Pipeline struct {
	deps    Deps
	opts    Options
	printer *observability.Printer
}

// New creates a pipeline. Zero option fields fall back to defaults.
func New(deps Deps, opts Options) *Pipeline {
	if opts.FoldCeiling <= 0 {
		opts.FoldCeiling = DefaultFoldCeiling
	}
	if opts.Run.CandidateCount <= 0 {
		opts.Run.CandidateCount = opts.Generation.NumMolecules
	}
	if opts.Run.CandidateCount <= 0 {
		opts.Run.CandidateCount = DefaultCandidateCount
	}
	return &Pipeline{
		deps:    deps,
		opts:    opts,
		printer: observability.NewPrinter(os.Stdout),
	}
}

// Run executes the full pipeline for a target identifier.
func (p *Pipeline) Run(ctx context.Context, identifier string) (*Result, error) {
	fmt.Printf("Step 1/%d: Resolving target %s...\n", totalSteps, identifier)
	record := p.deps.Resolver.Resolve(ctx, identifier)
	return p.execute(ctx, identifier, record, p.seed(nim.AspirinSeed))
}

// RunSequence executes the full pipeline for a raw amino-acid sequence.
// Resolution is local, and generation seeds from benzene rather than
// aspirin since there is no known chemistry to anchor on.
func (p *Pipeline) RunSequence(ctx context.Context, sequence string) (*Result, error) {
	record := p.deps.Resolver.ResolveSequence(sequence)
	fmt.Printf("Step 1/%d: Using raw sequence %s (%d residues)\n", totalSteps, record.Identifier, record.SequenceLength)
	return p.execute(ctx, record.Identifier, record, p.seed(nim.BenzeneSeed))
}

// seed picks the generation seed: an explicit override wins, then the
// profile's seed, then the run mode's default.
func (p *Pipeline) seed(fallback string) string {
	if p.opts.Seed != "" {
		return p.opts.Seed
	}
	if p.opts.Generation.Seed != "" {
		return p.opts.Generation.Seed
	}
	return fallback
}

// execute drives the stages after resolution. The returned error covers
// only the run dump write; everything else is recorded on the run itself.
func (p *Pipeline) execute(ctx context.Context, targetID string, record *types.TargetRecord, seed string) (*Result, error) {
	run := types.NewPipelineRun(targetID, p.opts.Run)
	artifacts := map[types.ArtifactKind]string{}

	if p.deps.Store != nil {
		if err := p.deps.Store.CreateRun(ctx, run); err != nil {
			fmt.Printf("Warning: Failed to create run record: %v\n", err)
		}
	}

	p.record(ctx, run, types.CompletedStage(types.StageTargetResolution, map[string]interface{}{
		types.PayloadTarget: record,
	}))
	if p.opts.Verbose {
		p.printer.PrintTargetRecord(record)
	}

	pdb := p.runStructure(ctx, run, record, artifacts)
	candidates := p.runMolecules(ctx, run, seed)
	p.runAssessment(ctx, run, record)
	p.runReport(ctx, run, artifacts)
	p.runVisualization(ctx, run, pdb, candidates, artifacts)

	// The dump is written after the final stage so it records all six
	// outcomes.
	dumpPath, dumpErr := p.deps.Writer.WriteRunDump(run)
	if dumpErr != nil {
		fmt.Printf("Warning: Failed to write run dump: %v\n", dumpErr)
	} else {
		artifacts[types.ArtifactRunDump] = dumpPath
	}

	if p.deps.Store != nil {
		if err := p.deps.Store.CompleteRun(ctx, run.ID, "completed"); err != nil {
			fmt.Printf("Warning: Failed to complete run record: %v\n", err)
		}
	}
	p.upload(ctx, run, artifacts)

	if p.opts.Verbose {
		p.printer.PrintRunSummary(run, artifacts)
	}
	return &Result{Run: run, Artifacts: artifacts}, dumpErr
}

// runStructure predicts and persists the target structure. It returns the
// PDB text so the visualization stage can embed it without re-reading the
// file.
func (p *Pipeline) runStructure(ctx context.Context, run *types.PipelineRun, record *types.TargetRecord, artifacts map[types.ArtifactKind]string) string {
	fmt.Printf("Step 2/%d: Predicting structure...\n", totalSteps)

	length := record.SequenceLength
	if length == 0 {
		length = len(record.Sequence)
	}

	switch {
	case !record.HasSequence():
		p.record(ctx, run, types.SkippedStage(types.StageStructurePrediction, "no sequence available"))
		return ""
	case length > p.opts.FoldCeiling:
		reason := fmt.Sprintf("sequence length %d exceeds the %d-residue limit", length, p.opts.FoldCeiling)
		p.record(ctx, run, types.SkippedStage(types.StageStructurePrediction, reason))
		return ""
	}

	pdb, err := p.deps.Folder.PredictStructure(ctx, record.Sequence)
	if err != nil {
		p.record(ctx, run, types.FailedStage(types.StageStructurePrediction, err))
		return ""
	}

	path, err := p.deps.Writer.WriteStructure(run.TargetID, pdb)
	if err != nil {
		p.record(ctx, run, types.FailedStage(types.StageStructurePrediction, fmt.Errorf("structure predicted but not persisted: %w", err)))
		return pdb
	}
	artifacts[types.ArtifactStructure] = path

	p.record(ctx, run, types.CompletedStage(types.StageStructurePrediction, map[string]interface{}{
		types.PayloadMethod:   structureMethod,
		types.PayloadPDBFile:  path,
		types.PayloadResidues: length,
	}))
	return pdb
}

// runMolecules generates candidates and returns them in generation order;
// ranking happens at presentation time.
func (p *Pipeline) runMolecules(ctx context.Context, run *types.PipelineRun, seed string) []types.CandidateMolecule {
	fmt.Printf("Step 3/%d: Generating candidate molecules...\n", totalSteps)

	if !p.opts.Run.GenerateCandidates {
		p.record(ctx, run, types.SkippedStage(types.StageMoleculeGeneration, "candidate generation disabled"))
		return nil
	}

	req := p.opts.Generation
	req.NumMolecules = p.opts.Run.CandidateCount
	req.Seed = seed
	candidates, err := p.deps.Generator.GenerateMolecules(ctx, req)
	if err != nil {
		p.record(ctx, run, types.FailedStage(types.StageMoleculeGeneration, err))
		return nil
	}

	p.record(ctx, run, types.CompletedStage(types.StageMoleculeGeneration, map[string]interface{}{
		types.PayloadMethod:    moleculeMethod,
		types.PayloadSeed:      seedLabel(seed),
		types.PayloadProperty:  propertyName,
		types.PayloadMolecules: candidates,
		types.PayloadRequested: p.opts.Run.CandidateCount,
	}))
	if p.opts.Verbose {
		p.printer.PrintCandidates(candidates)
	}
	return candidates
}

func (p *Pipeline) runAssessment(ctx context.Context, run *types.PipelineRun, record *types.TargetRecord) {
	fmt.Printf("Step 4/%d: Requesting druggability assessment...\n", totalSteps)

	text, err := p.deps.Assessor.Assess(ctx, record.Subject())
	if err != nil {
		p.record(ctx, run, types.FailedStage(types.StageAssessment, err))
		return
	}

	p.record(ctx, run, types.CompletedStage(types.StageAssessment, map[string]interface{}{
		types.PayloadAssessment: text,
		types.PayloadModel:      p.deps.Assessor.Model(),
	}))
	if p.opts.Verbose {
		p.printer.PrintAssessment(text)
	}
}

// runReport synthesizes the Markdown report from the stages recorded so
// far. The written file therefore summarizes the scientific stages; the
// run dump, written after everything, is the complete record.
func (p *Pipeline) runReport(ctx context.Context, run *types.PipelineRun, artifacts map[types.ArtifactKind]string) {
	fmt.Printf("Step 5/%d: Synthesizing report...\n", totalSteps)

	markdown := report.Synthesize(run)
	path, err := p.deps.Writer.WriteReport(run.TargetID, markdown)
	if err != nil {
		p.record(ctx, run, types.FailedStage(types.StageReport, err))
		return
	}
	artifacts[types.ArtifactReport] = path

	p.record(ctx, run, types.CompletedStage(types.StageReport, map[string]interface{}{
		types.PayloadReportFile: path,
	}))
}

func (p *Pipeline) runVisualization(ctx context.Context, run *types.PipelineRun, pdb string, candidates []types.CandidateMolecule, artifacts map[types.ArtifactKind]string) {
	fmt.Printf("Step 6/%d: Rendering visualizations...\n", totalSteps)

	switch {
	case !p.opts.Run.RenderArtifacts:
		p.record(ctx, run, types.SkippedStage(types.StageVisualization, "artifact rendering disabled"))
		return
	case p.deps.Renderer == nil || !p.deps.Renderer.Available():
		p.record(ctx, run, types.SkippedStage(types.StageVisualization, "no renderer available"))
		return
	case pdb == "" && len(candidates) == 0:
		p.record(ctx, run, types.SkippedStage(types.StageVisualization, "nothing to render"))
		return
	}

	files := map[string]string{}
	var lastErr error

	write := func(kind types.ArtifactKind, content string) {
		path, err := p.deps.Writer.WriteRendering(run.TargetID, kind, content)
		if err != nil {
			fmt.Printf("Warning: Failed to write %s: %v\n", kind, err)
			lastErr = err
			return
		}
		files[string(kind)] = path
		artifacts[kind] = path
	}

	if len(candidates) > 0 {
		write(types.ArtifactMoleculeGrid, p.deps.Renderer.MoleculeGridHTML(run.TargetID, candidates))
		write(types.ArtifactScoreChart, p.deps.Renderer.ScoreChartSVG(run.TargetID, candidates))
	}
	if pdb != "" {
		write(types.ArtifactStructureView, p.deps.Renderer.StructureViewerHTML(run.TargetID, pdb))
	}

	if len(files) == 0 {
		p.record(ctx, run, types.FailedStage(types.StageVisualization, lastErr))
		return
	}
	p.record(ctx, run, types.CompletedStage(types.StageVisualization, map[string]interface{}{
		types.PayloadFiles: files,
	}))
}

// record appends a stage result, emits progress, and persists the result
// when a store is attached. A duplicate stage indicates an orchestration
// bug and is logged rather than crashing the run.
func (p *Pipeline) record(ctx context.Context, run *types.PipelineRun, result types.StageResult) {
	if err := run.AddStage(result); err != nil {
		fmt.Printf("Warning: %v\n", err)
		return
	}

	switch result.Status {
	case types.StageSkipped:
		fmt.Printf("  Skipping %s: %s\n", result.Name, result.SkipReason)
	case types.StageFailed:
		fmt.Printf("  Warning: %s failed: %s\n", result.Name, result.Error)
	}

	if p.opts.OnProgress != nil {
		p.opts.OnProgress(ProgressEvent{
			RunID:   run.ID.String(),
			Stage:   result.Name,
			Status:  result.Status,
			Message: progressMessage(result),
			Result:  &result,
		})
	}

	if p.deps.Store != nil {
		if err := p.deps.Store.SaveStageResult(ctx, run.ID, result); err != nil {
			fmt.Printf("Warning: Failed to save stage result: %v\n", err)
		}
	}
}

func progressMessage(result types.StageResult) string {
	switch result.Status {
	case types.StageSkipped:
		return result.SkipReason
	case types.StageFailed:
		return result.Error
	default:
		return ""
	}
}

// upload pushes finished artifacts to object storage when an uploader is
// attached. Upload failures are logged; local files remain authoritative.
func (p *Pipeline) upload(ctx context.Context, run *types.PipelineRun, artifacts map[types.ArtifactKind]string) {
	if p.deps.Uploader == nil || len(artifacts) == 0 {
		return
	}

	kinds := make([]string, 0, len(artifacts))
	for kind := range artifacts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		path := artifacts[types.ArtifactKind(kind)]
		if _, err := p.deps.Uploader.Upload(ctx, run.ID.String(), path); err != nil {
			fmt.Printf("Warning: Failed to upload %s: %v\n", kind, err)
		}
	}
}

// seedLabel names well-known seeds the way reports show them.
func seedLabel(seed string) string {
	switch seed {
	case nim.AspirinSeed:
		return "Aspirin (" + nim.AspirinSeed + ")"
	case nim.BenzeneSeed:
		return "Benzene (" + nim.BenzeneSeed + ")"
	default:
		return seed
	}
}
