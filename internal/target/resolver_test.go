package target

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelCrowe11/CroweLM/internal/fetch"
)

const brafEntryJSON = `{
	"primaryAccession": "P15056",
	"genes": [{"geneName": {"value": "BRAF"}}],
	"proteinDescription": {"recommendedName": {"fullName": {"value": "Serine/threonine-protein kinase B-raf"}}},
	"organism": {"scientificName": "Homo sapiens"},
	"sequence": {"length": 40},
	"comments": [
		{"commentType": "FUNCTION", "texts": [{"value": "Protein kinase involved in MAP kinase signal transduction."}]},
		{"commentType": "SUBCELLULAR LOCATION", "subcellularLocations": [
			{"location": {"value": "Cytoplasm"}},
			{"location": {"value": "Nucleus"}}
		]}
	]
}`

const brafFasta = ">sp|P15056|BRAF_HUMAN Serine/threonine-protein kinase B-raf\nMAALSGGGGG\nGAEPGQALFN\nGDMEPEAGAG\nAGAAASSAAD\n"

func newUniProtServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/P15056.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(brafEntryJSON))
	})
	mux.HandleFunc("/P15056.fasta", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(brafFasta))
	})
	return httptest.NewServer(mux)
}

func newChemblServer(t *testing.T, targetCount int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/target.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "P15056", r.URL.Query().Get("target_components__accession"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"targets": [`)
		for i := 0; i < targetCount; i++ {
			if i > 0 {
				_, _ = fmt.Fprint(w, ",")
			}
			_, _ = fmt.Fprintf(w, `{"target_chembl_id": "CHEMBL%d", "pref_name": "Serine/threonine-protein kinase B-raf", "target_type": "SINGLE PROTEIN"}`, 5145+i)
		}
		_, _ = fmt.Fprint(w, `]}`)
	})
	return httptest.NewServer(mux)
}

func newPubMedServer(t *testing.T, gotTerm *string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		if gotTerm != nil {
			*gotTerm = r.URL.Query().Get("term")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"esearchresult": {"idlist": ["38001234", "37005678"]}}`))
	})
	mux.HandleFunc("/esummary.fcgi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "38001234,37005678", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": {
			"uids": ["38001234", "37005678"],
			"38001234": {
				"title": "Targeting <i>BRAF</i><sup>V600E</sup> in melanoma",
				"source": "Nat Rev Cancer",
				"pubdate": "2024 Jan 15",
				"authors": [{"name": "Smith J"}, {"name": "Chen L"}, {"name": "Garcia M"}, {"name": "Patel R"}]
			},
			"37005678": {
				"title": "Kinase inhibitor resistance mechanisms",
				"source": "Cell",
				"pubdate": "2023 Nov",
				"authors": [{"name": "Okafor N"}]
			}
		}}`))
	})
	return httptest.NewServer(mux)
}

func testResolver(uniprotURL, chemblURL, pubmedURL string) *Resolver {
	return NewResolver(&Config{
		UniProtURL: uniprotURL,
		ChemblURL:  chemblURL,
		PubMedURL:  pubmedURL,
	})
}

func TestFetchProtein_ExtractsFields(t *testing.T) {
	server := newUniProtServer(t)
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	info, err := resolver.FetchProtein(context.Background(), "P15056")
	require.NoError(t, err)

	assert.Equal(t, "P15056", info.Accession)
	assert.Equal(t, "BRAF", info.GeneSymbol)
	assert.Equal(t, "Serine/threonine-protein kinase B-raf", info.ProteinName)
	assert.Equal(t, "Homo sapiens", info.Organism)
	assert.Equal(t, 40, info.SequenceLength)
	assert.Empty(t, info.Sequence)
	assert.Contains(t, info.FunctionSummary, "MAP kinase")
	assert.Equal(t, []string{"Cytoplasm", "Nucleus"}, info.Locations)
}

func TestFetchProtein_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	_, err := resolver.FetchProtein(context.Background(), "P15056")
	require.Error(t, err)

	var fetchErr *fetch.Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestFetchSequence_JoinsFastaBody(t *testing.T) {
	server := newUniProtServer(t)
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	sequence, err := resolver.FetchSequence(context.Background(), "P15056")
	require.NoError(t, err)
	assert.Equal(t, "MAALSGGGGGGAEPGQALFNGDMEPEAGAGAGAAASSAAD", sequence)
	assert.Len(t, sequence, 40)
}

func TestFetchSequence_RejectsNonFasta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>error page</html>"))
	}))
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	_, err := resolver.FetchSequence(context.Background(), "P15056")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not FASTA")
}

func TestFetchBioactivity_CapsHits(t *testing.T) {
	server := newChemblServer(t, 8)
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	hits, err := resolver.FetchBioactivity(context.Background(), "P15056")
	require.NoError(t, err)
	assert.Len(t, hits, 5)
	assert.Equal(t, "CHEMBL5145", hits[0].ChemblID)
	assert.Equal(t, "SINGLE PROTEIN", hits[0].TargetType)
}

func TestFetchBioactivity_NoHits(t *testing.T) {
	server := newChemblServer(t, 0)
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	hits, err := resolver.FetchBioactivity(context.Background(), "P15056")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFetchLiterature_MapsSummaries(t *testing.T) {
	server := newPubMedServer(t, nil)
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	citations, err := resolver.FetchLiterature(context.Background(), "BRAF drug target", 5)
	require.NoError(t, err)
	require.Len(t, citations, 2)

	first := citations[0]
	assert.Equal(t, "38001234", first.PMID)
	assert.Equal(t, "Targeting BRAFV600E in melanoma", first.Title)
	assert.Equal(t, "Nat Rev Cancer", first.Journal)
	assert.Equal(t, "2024", first.Year)
	assert.Equal(t, []string{"Smith J", "Chen L", "Garcia M"}, first.Authors)
}

func TestFetchLiterature_NoHitsIsEmptyNotError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"esearchresult": {"idlist": []}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := testResolver(server.URL, server.URL, server.URL)
	citations, err := resolver.FetchLiterature(context.Background(), "nonexistent gene xyz", 5)
	require.NoError(t, err)
	assert.Empty(t, citations)
}

func TestResolve_MergesAllSources(t *testing.T) {
	uniprot := newUniProtServer(t)
	defer uniprot.Close()
	chembl := newChemblServer(t, 2)
	defer chembl.Close()
	var gotTerm string
	pubmed := newPubMedServer(t, &gotTerm)
	defer pubmed.Close()

	resolver := testResolver(uniprot.URL, chembl.URL, pubmed.URL)
	record := resolver.Resolve(context.Background(), "P15056")

	assert.Equal(t, "P15056", record.Identifier)
	assert.Equal(t, "BRAF", record.GeneSymbol)
	assert.Equal(t, "Homo sapiens", record.Organism)
	// Entry JSON carried no sequence body, so the FASTA fallback filled it.
	assert.Equal(t, "MAALSGGGGGGAEPGQALFNGDMEPEAGAGAGAAASSAAD", record.Sequence)
	assert.Equal(t, 40, record.SequenceLength)
	assert.Len(t, record.Bioactivity, 2)
	assert.Len(t, record.Citations, 2)
	assert.Empty(t, record.FailedSources)
	// Literature search keys on the resolved gene symbol, not the accession.
	assert.Equal(t, "BRAF drug target", gotTerm)
}

func TestResolve_AllSourcesDownYieldsBareRecord(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	resolver := testResolver(down.URL, down.URL, down.URL)
	record := resolver.Resolve(context.Background(), "UNKNOWN99")

	assert.Equal(t, "UNKNOWN99", record.Identifier)
	assert.Empty(t, record.GeneSymbol)
	assert.Empty(t, record.Sequence)
	assert.Equal(t, "UNKNOWN99", record.Subject())
	assert.ElementsMatch(t, []string{SourceUniProt, SourceChembl, SourcePubMed}, record.FailedSources)
}

func TestResolve_LiteratureFallsBackToIdentifier(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()
	var gotTerm string
	pubmed := newPubMedServer(t, &gotTerm)
	defer pubmed.Close()

	resolver := testResolver(down.URL, down.URL, pubmed.URL)
	record := resolver.Resolve(context.Background(), "UNKNOWN99")

	assert.Equal(t, "UNKNOWN99 drug target", gotTerm)
	assert.Len(t, record.Citations, 2)
}

func TestResolveSequence_NormalizesAndDerivesIdentifier(t *testing.T) {
	record := ResolveSequence("mval spad\nktnv")

	assert.Equal(t, "MVALSPADKTNV", record.Sequence)
	assert.Equal(t, 12, record.SequenceLength)
	assert.Regexp(t, `^seq-[0-9a-f]{8}$`, record.Identifier)

	// Same sequence, same identifier; different sequence, different identifier.
	again := ResolveSequence("MVALSPADKTNV")
	assert.Equal(t, record.Identifier, again.Identifier)
	other := ResolveSequence("MVALSPADKTNW")
	assert.NotEqual(t, record.Identifier, other.Identifier)
}
