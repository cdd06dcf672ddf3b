// Package types provides type definitions for structured data used throughout the discovery pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineRun_Defaults(t *testing.T) {
	run := NewPipelineRun("P15056", RunOptions{GenerateCandidates: true, CandidateCount: 10})

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", run.ID.String())
	assert.Equal(t, "P15056", run.TargetID)
	assert.False(t, run.StartedAt.IsZero())
	assert.True(t, run.Options.GenerateCandidates)
	assert.Empty(t, run.Stages)
}

func TestPipelineRun_AddStagePreservesOrder(t *testing.T) {
	run := NewPipelineRun("P15056", RunOptions{})

	require.NoError(t, run.AddStage(CompletedStage(StageTargetResolution, map[string]interface{}{"gene": "BRAF"})))
	require.NoError(t, run.AddStage(SkippedStage(StageStructurePrediction, "no sequence available")))
	require.NoError(t, run.AddStage(FailedStage(StageAssessment, errors.New("service unavailable"))))

	require.Len(t, run.Stages, 3)
	assert.Equal(t, StageTargetResolution, run.Stages[0].Name)
	assert.Equal(t, StageStructurePrediction, run.Stages[1].Name)
	assert.Equal(t, StageAssessment, run.Stages[2].Name)
}

func TestPipelineRun_AddStageRejectsDuplicates(t *testing.T) {
	run := NewPipelineRun("P15056", RunOptions{})

	require.NoError(t, run.AddStage(CompletedStage(StageTargetResolution, nil)))
	err := run.AddStage(FailedStage(StageTargetResolution, errors.New("again")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already recorded")
	assert.Len(t, run.Stages, 1)
}

func TestStageResult_ExactlyOneVariantField(t *testing.T) {
	completed := CompletedStage(StageMoleculeGeneration, map[string]interface{}{"count": 7})
	assert.Equal(t, StageCompleted, completed.Status)
	assert.NotNil(t, completed.Payload)
	assert.Empty(t, completed.SkipReason)
	assert.Empty(t, completed.Error)

	skipped := SkippedStage(StageStructurePrediction, "sequence length 766 exceeds fold ceiling 400")
	assert.Equal(t, StageSkipped, skipped.Status)
	assert.Nil(t, skipped.Payload)
	assert.Equal(t, "sequence length 766 exceeds fold ceiling 400", skipped.SkipReason)
	assert.Empty(t, skipped.Error)

	failed := FailedStage(StageAssessment, errors.New("timeout"))
	assert.Equal(t, StageFailed, failed.Status)
	assert.Nil(t, failed.Payload)
	assert.Empty(t, failed.SkipReason)
	assert.Equal(t, "timeout", failed.Error)
}

func TestCompletedStage_NilPayloadBecomesEmpty(t *testing.T) {
	result := CompletedStage(StageAssessment, nil)
	assert.NotNil(t, result.Payload)
	assert.Empty(t, result.Payload)
}

func TestPipelineRun_StageLookup(t *testing.T) {
	run := NewPipelineRun("P15056", RunOptions{})
	require.NoError(t, run.AddStage(CompletedStage(StageTargetResolution, map[string]interface{}{"gene": "BRAF"})))

	assert.True(t, run.Completed(StageTargetResolution))
	assert.False(t, run.Completed(StageAssessment))
	assert.Nil(t, run.Stage(StageReport))

	payload := run.Payload(StageTargetResolution)
	require.NotNil(t, payload)
	assert.Equal(t, "BRAF", payload["gene"])
	assert.Nil(t, run.Payload(StageStructurePrediction))
}

func TestPipelineRun_PayloadNilForNonCompleted(t *testing.T) {
	run := NewPipelineRun("P15056", RunOptions{})
	require.NoError(t, run.AddStage(SkippedStage(StageMoleculeGeneration, "candidate generation disabled")))

	assert.Nil(t, run.Payload(StageMoleculeGeneration))
}

func TestPipelineRun_JSONRoundTrip(t *testing.T) {
	run := NewPipelineRun("P15056", RunOptions{GenerateCandidates: true, CandidateCount: 5, OutputDir: "./out"})
	require.NoError(t, run.AddStage(CompletedStage(StageTargetResolution, map[string]interface{}{"gene": "BRAF"})))
	require.NoError(t, run.AddStage(SkippedStage(StageStructurePrediction, "no sequence available")))

	raw, err := json.Marshal(run)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"target_id":"P15056"`)
	assert.Contains(t, string(raw), `"generate_candidates":true`)
	assert.Contains(t, string(raw), `"output_location":"./out"`)

	var decoded PipelineRun
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, run.ID, decoded.ID)
	require.Len(t, decoded.Stages, 2)
	assert.Equal(t, StageSkipped, decoded.Stages[1].Status)
	assert.Equal(t, "no sequence available", decoded.Stages[1].SkipReason)
}
