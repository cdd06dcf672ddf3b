// Package types provides type definitions for structured data used throughout the discovery pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"sort"
)

// CandidateMolecule represents a single generated molecule with its
// optimization score. Rank is assigned after ordering and is 1-based.
type CandidateMolecule struct {
	SMILES string  `json:"smiles"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank,omitempty"`
}

// RankCandidates orders candidates by score descending and assigns 1-based
// ranks. Ties keep their generation order, so ranking is deterministic for
// a given generation result.
func RankCandidates(candidates []CandidateMolecule) []CandidateMolecule {
	ranked := make([]CandidateMolecule, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// CandidatesFromPayload decodes a candidate list out of a stage payload
// value. Payloads survive JSON round-trips (run dumps, database rows), so
// the value may be either the original []CandidateMolecule or the decoded
// []interface{} form; both normalize through a marshal/unmarshal cycle.
func CandidatesFromPayload(v interface{}) []CandidateMolecule {
	if v == nil {
		return nil
	}
	if candidates, ok := v.([]CandidateMolecule); ok {
		return candidates
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var candidates []CandidateMolecule
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil
	}
	return candidates
}
