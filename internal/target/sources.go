// Package target resolves biological target identifiers into enriched
// records using public databases (UniProt, ChEMBL, PubMed).
package target

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MichaelCrowe11/CroweLM/internal/fetch"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// Default public API endpoints.
const (
	DefaultUniProtURL = "https://rest.uniprot.org/uniprotkb"
	DefaultChemblURL  = "https://www.ebi.ac.uk/chembl/api/data"
	DefaultPubMedURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
)

// ProteinInfo holds the fields extracted from a UniProt entry.
type ProteinInfo struct {
	Accession       string
	GeneSymbol      string
	ProteinName     string
	Organism        string
	Sequence        string
	SequenceLength  int
	FunctionSummary string
	Locations       []string
}

// uniprotEntry mirrors the slice of the UniProt entry JSON this resolver reads.
type uniprotEntry struct {
	PrimaryAccession string `json:"primaryAccession"`
	Genes            []struct {
		GeneName struct {
			Value string `json:"value"`
		} `json:"geneName"`
	} `json:"genes"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Organism struct {
		ScientificName string `json:"scientificName"`
	} `json:"organism"`
	Sequence struct {
		Value  string `json:"value"`
		Length int    `json:"length"`
	} `json:"sequence"`
	Comments []struct {
		CommentType string `json:"commentType"`
		Texts       []struct {
			Value string `json:"value"`
		} `json:"texts"`
		SubcellularLocations []struct {
			Location struct {
				Value string `json:"value"`
			} `json:"location"`
		} `json:"subcellularLocations"`
	} `json:"comments"`
}

// FetchProtein retrieves the UniProt entry for an accession and extracts the
// fields the pipeline uses.
func (r *Resolver) FetchProtein(ctx context.Context, accession string) (*ProteinInfo, error) {
	var entry uniprotEntry
	entryURL := fmt.Sprintf("%s/%s.json", r.config.UniProtURL, url.PathEscape(accession))
	if err := fetch.JSON(ctx, entryURL, nil, &entry, r.config.Fetch); err != nil {
		return nil, err
	}

	info := &ProteinInfo{
		Accession:      entry.PrimaryAccession,
		ProteinName:    entry.ProteinDescription.RecommendedName.FullName.Value,
		Organism:       entry.Organism.ScientificName,
		Sequence:       entry.Sequence.Value,
		SequenceLength: entry.Sequence.Length,
	}
	if len(entry.Genes) > 0 {
		info.GeneSymbol = entry.Genes[0].GeneName.Value
	}
	for _, comment := range entry.Comments {
		switch comment.CommentType {
		case "FUNCTION":
			if info.FunctionSummary == "" && len(comment.Texts) > 0 {
				info.FunctionSummary = comment.Texts[0].Value
			}
		case "SUBCELLULAR LOCATION":
			for _, loc := range comment.SubcellularLocations {
				if loc.Location.Value != "" {
					info.Locations = append(info.Locations, loc.Location.Value)
				}
			}
		}
	}
	return info, nil
}

// FetchSequence retrieves the FASTA entry for an accession and returns the
// bare sequence with the header line removed.
func (r *Resolver) FetchSequence(ctx context.Context, accession string) (string, error) {
	fastaURL := fmt.Sprintf("%s/%s.fasta", r.config.UniProtURL, url.PathEscape(accession))
	result, err := fetch.URL(ctx, fastaURL, nil, r.config.Fetch)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimSpace(result.Body), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], ">") {
		return "", &fetch.Error{URL: fastaURL, Message: "response is not FASTA"}
	}
	var sb strings.Builder
	for _, line := range lines[1:] {
		sb.WriteString(strings.TrimSpace(line))
	}
	return sb.String(), nil
}

// FetchBioactivity retrieves ChEMBL targets whose components match the
// accession, capped at BioactivityLimit hits.
func (r *Resolver) FetchBioactivity(ctx context.Context, accession string) ([]types.BioactivityTarget, error) {
	var payload struct {
		Targets []struct {
			TargetChemblID string `json:"target_chembl_id"`
			PrefName       string `json:"pref_name"`
			TargetType     string `json:"target_type"`
		} `json:"targets"`
	}
	params := url.Values{}
	params.Set("target_components__accession", accession)
	params.Set("format", "json")
	targetURL := fmt.Sprintf("%s/target.json", r.config.ChemblURL)
	if err := fetch.JSON(ctx, targetURL, params, &payload, r.config.Fetch); err != nil {
		return nil, err
	}

	hits := make([]types.BioactivityTarget, 0, len(payload.Targets))
	for _, t := range payload.Targets {
		hits = append(hits, types.BioactivityTarget{
			ChemblID:   t.TargetChemblID,
			PrefName:   t.PrefName,
			TargetType: t.TargetType,
		})
		if len(hits) >= r.config.BioactivityLimit {
			break
		}
	}
	return hits, nil
}

// FetchLiterature searches PubMed and returns summaries for the top hits.
// No hits is a valid empty result, not an error.
func (r *Resolver) FetchLiterature(ctx context.Context, term string, limit int) ([]types.Citation, error) {
	var search struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	searchParams := url.Values{}
	searchParams.Set("db", "pubmed")
	searchParams.Set("term", term)
	searchParams.Set("retmax", fmt.Sprintf("%d", limit))
	searchParams.Set("retmode", "json")
	searchURL := fmt.Sprintf("%s/esearch.fcgi", r.config.PubMedURL)
	if err := fetch.JSON(ctx, searchURL, searchParams, &search, r.config.Fetch); err != nil {
		return nil, err
	}

	ids := search.ESearchResult.IDList
	if len(ids) == 0 {
		return []types.Citation{}, nil
	}

	var summary struct {
		Result map[string]struct {
			Title   string `json:"title"`
			Source  string `json:"source"`
			PubDate string `json:"pubdate"`
			Authors []struct {
				Name string `json:"name"`
			} `json:"authors"`
		} `json:"result"`
	}
	summaryParams := url.Values{}
	summaryParams.Set("db", "pubmed")
	summaryParams.Set("id", strings.Join(ids, ","))
	summaryParams.Set("retmode", "json")
	summaryURL := fmt.Sprintf("%s/esummary.fcgi", r.config.PubMedURL)
	if err := fetch.JSON(ctx, summaryURL, summaryParams, &summary, r.config.Fetch); err != nil {
		return nil, err
	}

	citations := make([]types.Citation, 0, len(ids))
	for _, id := range ids {
		entry, ok := summary.Result[id]
		if !ok {
			continue
		}
		citation := types.Citation{
			PMID:    id,
			Title:   fetch.StripTags(entry.Title),
			Journal: entry.Source,
			Year:    yearOf(entry.PubDate),
		}
		for _, author := range entry.Authors {
			citation.Authors = append(citation.Authors, author.Name)
			if len(citation.Authors) >= 3 {
				break
			}
		}
		citations = append(citations, citation)
	}
	return citations, nil
}

// yearOf extracts the year from a PubMed pubdate like "2024 Jan 15".
func yearOf(pubdate string) string {
	fields := strings.Fields(pubdate)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
