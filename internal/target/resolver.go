// Package target resolves biological target identifiers into enriched
// records using public databases (UniProt, ChEMBL, PubMed).
package target

import (
	"context"
	"crypto/sha1"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/MichaelCrowe11/CroweLM/internal/fetch"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// Source names recorded when a sub-fetch fails.
const (
	SourceUniProt  = "uniprot"
	SourceFasta    = "uniprot_fasta"
	SourceChembl   = "chembl"
	SourcePubMed   = "pubmed"
	defaultLimit   = 5
	literatureTerm = "%s drug target"
)

// Config holds resolver endpoints and limits. Zero values fall back to the
// public API defaults.
type Config struct {
	UniProtURL       string
	ChemblURL        string
	PubMedURL        string
	LiteratureLimit  int
	BioactivityLimit int
	Fetch            *fetch.Options
}

// DefaultConfig returns a config pointing at the public APIs.
func DefaultConfig() *Config {
	return &Config{
		UniProtURL:       DefaultUniProtURL,
		ChemblURL:        DefaultChemblURL,
		PubMedURL:        DefaultPubMedURL,
		LiteratureLimit:  defaultLimit,
		BioactivityLimit: defaultLimit,
		Fetch:            fetch.DefaultOptions(),
	}
}

// Resolver enriches target identifiers from public sources.
type Resolver struct {
	config *Config
}

// NewResolver creates a resolver. A nil config uses the public defaults;
// individual zero fields are filled in.
func NewResolver(config *Config) *Resolver {
	if config == nil {
		config = DefaultConfig()
	}
	if config.UniProtURL == "" {
		config.UniProtURL = DefaultUniProtURL
	}
	if config.ChemblURL == "" {
		config.ChemblURL = DefaultChemblURL
	}
	if config.PubMedURL == "" {
		config.PubMedURL = DefaultPubMedURL
	}
	if config.LiteratureLimit <= 0 {
		config.LiteratureLimit = defaultLimit
	}
	if config.BioactivityLimit <= 0 {
		config.BioactivityLimit = defaultLimit
	}
	if config.Fetch == nil {
		config.Fetch = fetch.DefaultOptions()
	}
	return &Resolver{config: config}
}

// Resolve enriches an identifier from all sources and merges the results.
// Sub-fetches fail independently: a failed source is logged and recorded on
// the record, never propagated. When everything fails the record still
// carries the identifier so downstream stages can proceed with fallbacks.
func (r *Resolver) Resolve(ctx context.Context, identifier string) *types.TargetRecord {
	record := &types.TargetRecord{Identifier: identifier}

	// The protein entry runs first: it supplies the sequence and the gene
	// symbol that the remaining sub-fetches key on.
	info, err := r.FetchProtein(ctx, identifier)
	if err != nil {
		log.Printf("Warning: UniProt lookup failed for %s: %v", identifier, err)
		record.FailedSources = append(record.FailedSources, SourceUniProt)
	} else {
		record.GeneSymbol = info.GeneSymbol
		record.ProteinName = info.ProteinName
		record.Organism = info.Organism
		record.Sequence = info.Sequence
		record.SequenceLength = info.SequenceLength
		record.FunctionSummary = info.FunctionSummary
		record.Locations = info.Locations
	}

	var (
		sequence     string
		sequenceErr  error
		bioactivity  []types.BioactivityTarget
		bioactErr    error
		citations    []types.Citation
		citationsErr error
	)

	needFasta := record.Sequence == "" && record.SequenceLength > 0

	g, gctx := errgroup.WithContext(ctx)
	if needFasta {
		g.Go(func() error {
			sequence, sequenceErr = r.FetchSequence(gctx, identifier)
			return nil
		})
	}
	g.Go(func() error {
		bioactivity, bioactErr = r.FetchBioactivity(gctx, identifier)
		return nil
	})
	g.Go(func() error {
		term := fmt.Sprintf(literatureTerm, record.Subject())
		citations, citationsErr = r.FetchLiterature(gctx, term, r.config.LiteratureLimit)
		return nil
	})
	_ = g.Wait()

	if needFasta {
		if sequenceErr != nil {
			log.Printf("Warning: FASTA fetch failed for %s: %v", identifier, sequenceErr)
			record.FailedSources = append(record.FailedSources, SourceFasta)
		} else {
			record.Sequence = sequence
		}
	}
	if bioactErr != nil {
		log.Printf("Warning: ChEMBL lookup failed for %s: %v", identifier, bioactErr)
		record.FailedSources = append(record.FailedSources, SourceChembl)
	} else {
		record.Bioactivity = bioactivity
	}
	if citationsErr != nil {
		log.Printf("Warning: PubMed search failed for %s: %v", identifier, citationsErr)
		record.FailedSources = append(record.FailedSources, SourcePubMed)
	} else {
		record.Citations = citations
	}

	if record.Sequence != "" && record.SequenceLength == 0 {
		record.SequenceLength = len(record.Sequence)
	}
	return record
}

// ResolveSequence builds a record directly from a raw amino-acid sequence.
// It never touches the network; pipelines that already hold a sequence use
// this instead of Resolve.
func (r *Resolver) ResolveSequence(sequence string) *types.TargetRecord {
	return ResolveSequence(sequence)
}

// ResolveSequence builds a record directly from a raw amino-acid sequence
// without any remote calls. The identifier is derived from the sequence so
// artifact names stay stable per sequence and distinct across sequences.
func ResolveSequence(sequence string) *types.TargetRecord {
	normalized := NormalizeSequence(sequence)
	return &types.TargetRecord{
		Identifier:     SequenceIdentifier(normalized),
		Sequence:       normalized,
		SequenceLength: len(normalized),
	}
}

// NormalizeSequence strips whitespace and uppercases a raw sequence.
func NormalizeSequence(sequence string) string {
	return strings.ToUpper(strings.Join(strings.Fields(sequence), ""))
}

// SequenceIdentifier derives a short stable identifier for a raw sequence.
func SequenceIdentifier(sequence string) string {
	sum := sha1.Sum([]byte(sequence))
	return fmt.Sprintf("seq-%x", sum[:4])
}
