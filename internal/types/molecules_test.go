// Package types provides type definitions for structured data used throughout the discovery pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCandidates_OrdersByScoreDescending(t *testing.T) {
	candidates := []CandidateMolecule{
		{SMILES: "CCO", Score: 0.40},
		{SMILES: "c1ccccc1", Score: 0.91},
		{SMILES: "CC(=O)O", Score: 0.73},
	}

	ranked := RankCandidates(candidates)

	require.Len(t, ranked, 3)
	assert.Equal(t, "c1ccccc1", ranked[0].SMILES)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "CC(=O)O", ranked[1].SMILES)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "CCO", ranked[2].SMILES)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestRankCandidates_TiesKeepGenerationOrder(t *testing.T) {
	candidates := []CandidateMolecule{
		{SMILES: "first", Score: 0.5},
		{SMILES: "second", Score: 0.5},
		{SMILES: "third", Score: 0.5},
	}

	ranked := RankCandidates(candidates)

	assert.Equal(t, "first", ranked[0].SMILES)
	assert.Equal(t, "second", ranked[1].SMILES)
	assert.Equal(t, "third", ranked[2].SMILES)
}

func TestRankCandidates_DoesNotMutateInput(t *testing.T) {
	candidates := []CandidateMolecule{
		{SMILES: "low", Score: 0.1},
		{SMILES: "high", Score: 0.9},
	}

	_ = RankCandidates(candidates)

	assert.Equal(t, "low", candidates[0].SMILES)
	assert.Equal(t, 0, candidates[0].Rank)
}

func TestCandidatesFromPayload_TypedSlice(t *testing.T) {
	original := []CandidateMolecule{{SMILES: "CCO", Score: 0.4, Rank: 1}}

	decoded := CandidatesFromPayload(original)

	require.Len(t, decoded, 1)
	assert.Equal(t, "CCO", decoded[0].SMILES)
}

func TestCandidatesFromPayload_JSONRoundTrippedSlice(t *testing.T) {
	payload := map[string]interface{}{
		"molecules": []CandidateMolecule{
			{SMILES: "CCO", Score: 0.4, Rank: 2},
			{SMILES: "c1ccccc1", Score: 0.9, Rank: 1},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var roundTripped map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &roundTripped))

	decoded := CandidatesFromPayload(roundTripped["molecules"])

	require.Len(t, decoded, 2)
	assert.Equal(t, "c1ccccc1", decoded[1].SMILES)
	assert.Equal(t, 0.9, decoded[1].Score)
	assert.Equal(t, 1, decoded[1].Rank)
}

func TestCandidatesFromPayload_Nil(t *testing.T) {
	assert.Nil(t, CandidatesFromPayload(nil))
}

func TestTargetRecord_Subject(t *testing.T) {
	resolved := TargetRecord{Identifier: "P15056", GeneSymbol: "BRAF"}
	assert.Equal(t, "BRAF", resolved.Subject())

	bare := TargetRecord{Identifier: "UNKNOWN123"}
	assert.Equal(t, "UNKNOWN123", bare.Subject())
}
