// Package types provides type definitions for structured data used throughout the discovery pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StageName identifies a pipeline stage.
type StageName string

// Pipeline stages in execution order.
const (
	StageTargetResolution    StageName = "target_resolution"
	StageStructurePrediction StageName = "structure_prediction"
	StageMoleculeGeneration  StageName = "molecule_generation"
	StageAssessment          StageName = "assessment"
	StageReport              StageName = "report"
	StageVisualization       StageName = "visualization"
)

// StageStatus is the outcome of a single stage.
type StageStatus string

// Stage outcomes.
const (
	StageCompleted StageStatus = "completed"
	StageSkipped   StageStatus = "skipped"
	StageFailed    StageStatus = "failed"
)

// StageResult records the outcome of one pipeline stage. Exactly one of
// Payload, SkipReason, or Error is populated, matching Status.
type StageResult struct {
	Name       StageName              `json:"name"`
	Status     StageStatus            `json:"status"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	SkipReason string                 `json:"skip_reason,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// CompletedStage builds a completed result carrying the stage payload.
func CompletedStage(name StageName, payload map[string]interface{}) StageResult {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return StageResult{Name: name, Status: StageCompleted, Payload: payload}
}

// SkippedStage builds a skipped result carrying the precondition that was
// not met.
func SkippedStage(name StageName, reason string) StageResult {
	return StageResult{Name: name, Status: StageSkipped, SkipReason: reason}
}

// FailedStage builds a failed result carrying the error text.
func FailedStage(name StageName, err error) StageResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return StageResult{Name: name, Status: StageFailed, Error: msg}
}

// RunOptions are the caller-supplied knobs for a pipeline run.
type RunOptions struct {
	GenerateCandidates bool   `json:"generate_candidates"`
	CandidateCount     int    `json:"candidate_count,omitempty"`
	RenderArtifacts    bool   `json:"render_artifacts"`
	OutputDir          string `json:"output_location,omitempty"`
}

// PipelineRun is the envelope for a single pipeline execution. StartedAt is
// set at creation and never reassigned; Stages is append-only with one
// result per stage, in execution order.
type PipelineRun struct {
	ID        uuid.UUID     `json:"id"`
	TargetID  string        `json:"target_id"`
	StartedAt time.Time     `json:"started_at"`
	Options   RunOptions    `json:"options"`
	Stages    []StageResult `json:"stages"`
}

// NewPipelineRun creates a run envelope for the given target.
func NewPipelineRun(targetID string, opts RunOptions) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		TargetID:  targetID,
		StartedAt: time.Now().UTC(),
		Options:   opts,
	}
}

// AddStage appends a stage result. Stage names are unique within a run;
// appending a duplicate is an orchestration bug and is rejected.
func (r *PipelineRun) AddStage(result StageResult) error {
	if r.Stage(result.Name) != nil {
		return fmt.Errorf("stage %q already recorded", result.Name)
	}
	r.Stages = append(r.Stages, result)
	return nil
}

// Stage returns the result for the named stage, or nil if the stage has not
// run.
func (r *PipelineRun) Stage(name StageName) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// Completed reports whether the named stage ran to completion.
func (r *PipelineRun) Completed(name StageName) bool {
	result := r.Stage(name)
	return result != nil && result.Status == StageCompleted
}

// Payload returns the payload of the named stage when it completed, nil
// otherwise.
func (r *PipelineRun) Payload(name StageName) map[string]interface{} {
	result := r.Stage(name)
	if result == nil || result.Status != StageCompleted {
		return nil
	}
	return result.Payload
}

// ArtifactKind identifies a persisted artifact type.
type ArtifactKind string

// Artifact kinds written by the pipeline.
const (
	ArtifactStructure     ArtifactKind = "structure"
	ArtifactReport        ArtifactKind = "report"
	ArtifactRunDump       ArtifactKind = "run_dump"
	ArtifactMoleculeGrid  ArtifactKind = "molecule_grid"
	ArtifactStructureView ArtifactKind = "structure_view"
	ArtifactScoreChart    ArtifactKind = "score_chart"
)
