// Package types provides type definitions for structured data used throughout the discovery pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// TargetRecord represents a biological target enriched from public sources.
// Every field beyond Identifier is optional; a target that could not be
// resolved carries only its identifier.
type TargetRecord struct {
	Identifier      string              `json:"identifier"`
	GeneSymbol      string              `json:"gene_symbol,omitempty"`
	ProteinName     string              `json:"protein_name,omitempty"`
	Organism        string              `json:"organism,omitempty"`
	Sequence        string              `json:"sequence,omitempty"`
	SequenceLength  int                 `json:"sequence_length,omitempty"`
	FunctionSummary string              `json:"function_summary,omitempty"`
	Locations       []string            `json:"subcellular_locations,omitempty"`
	Bioactivity     []BioactivityTarget `json:"bioactivity_targets,omitempty"`
	Citations       []Citation          `json:"citations,omitempty"`
	// FailedSources lists the sub-fetches that failed during resolution
	FailedSources []string `json:"failed_sources,omitempty"`
}

// Subject returns the name used in prompts and report headers: the gene
// symbol when resolution produced one, the raw identifier otherwise.
func (t *TargetRecord) Subject() string {
	if t.GeneSymbol != "" {
		return t.GeneSymbol
	}
	return t.Identifier
}

// HasSequence reports whether a sequence is available for structure prediction.
func (t *TargetRecord) HasSequence() bool {
	return t.Sequence != ""
}

// BioactivityTarget represents a single ChEMBL target hit
type BioactivityTarget struct {
	ChemblID   string `json:"chembl_id"`
	PrefName   string `json:"pref_name"`
	TargetType string `json:"target_type"`
}

// Citation represents a PubMed literature reference
type Citation struct {
	PMID    string   `json:"pmid"`
	Title   string   `json:"title"`
	Journal string   `json:"journal,omitempty"`
	Year    string   `json:"year,omitempty"`
	Authors []string `json:"authors,omitempty"`
}
