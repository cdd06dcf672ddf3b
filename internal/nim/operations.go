// Package nim provides clients for NVIDIA NIM molecular AI services
// (ESMFold structure prediction, MolMIM molecule generation, DiffDock
// docking).
package nim

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/MichaelCrowe11/CroweLM/internal/schemas"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// Biology endpoint paths, relative to {biology_url}/biology/.
const (
	endpointESMFold  = "nvidia/esmfold"
	endpointMolMIM   = "nvidia/molmim/generate"
	endpointDiffDock = "diffdock/predict"
)

// Seed molecules for generation. Aspirin is the default for resolved
// targets; benzene is the minimal scaffold used for raw-sequence runs.
const (
	AspirinSeed = "CC(=O)Oc1ccccc1C(=O)O"
	BenzeneSeed = "c1ccccc1"
)

// PredictStructure folds an amino-acid sequence with ESMFold and returns
// the predicted structure as PDB text.
func (c *Client) PredictStructure(ctx context.Context, sequence string) (string, error) {
	if sequence == "" {
		return "", &Error{Endpoint: endpointESMFold, Kind: KindRejected, Message: "empty sequence"}
	}

	var resp struct {
		Pdbs []string `json:"pdbs"`
	}
	payload := map[string]string{"sequence": sequence}
	if err := c.callNIM(ctx, endpointESMFold, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Pdbs) == 0 || resp.Pdbs[0] == "" {
		return "", &Error{Endpoint: endpointESMFold, Kind: KindMalformed, Message: "response contained no structures"}
	}
	return resp.Pdbs[0], nil
}

// GenerateRequest holds MolMIM generation parameters.
type GenerateRequest struct {
	NumMolecules  int     `json:"num_molecules"`
	Algorithm     string  `json:"algorithm"`
	PropertyName  string  `json:"property_name"`
	MinSimilarity float64 `json:"min_similarity"`
	Particles     int     `json:"particles"`
	Iterations    int     `json:"iterations"`
	Seed          string  `json:"smi,omitempty"`
}

// DefaultGenerateRequest returns the standard QED optimization run seeded
// with aspirin.
func DefaultGenerateRequest() GenerateRequest {
	return GenerateRequest{
		NumMolecules: 10,
		Algorithm:    "CMA-ES",
		PropertyName: "QED",
		Particles:    30,
		Iterations:   10,
		Seed:         AspirinSeed,
	}
}

// normalize fills zero fields with the defaults.
func (r GenerateRequest) normalize() GenerateRequest {
	defaults := DefaultGenerateRequest()
	if r.NumMolecules <= 0 {
		r.NumMolecules = defaults.NumMolecules
	}
	if r.Algorithm == "" {
		r.Algorithm = defaults.Algorithm
	}
	if r.PropertyName == "" {
		r.PropertyName = defaults.PropertyName
	}
	if r.Particles <= 0 {
		r.Particles = defaults.Particles
	}
	if r.Iterations <= 0 {
		r.Iterations = defaults.Iterations
	}
	return r
}

// GenerateMolecules requests candidate molecules from MolMIM. The service
// sometimes double-encodes the molecules field as a JSON string; both forms
// decode. Elements that fail schema validation are dropped; well-formed
// ones survive.
func (c *Client) GenerateMolecules(ctx context.Context, req GenerateRequest) ([]types.CandidateMolecule, error) {
	req = req.normalize()

	var resp struct {
		Molecules json.RawMessage `json:"molecules"`
	}
	if err := c.callNIM(ctx, endpointMolMIM, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Molecules) == 0 {
		return nil, &Error{Endpoint: endpointMolMIM, Kind: KindMalformed, Message: "response contained no molecules field"}
	}

	elements, err := decodeMoleculeList(resp.Molecules)
	if err != nil {
		return nil, &Error{Endpoint: endpointMolMIM, Kind: KindMalformed, Message: "molecules field is not a list", Cause: err}
	}

	candidates := make([]types.CandidateMolecule, 0, len(elements))
	for _, element := range elements {
		if err := schemas.ValidateMolecule(string(element)); err != nil {
			continue
		}
		var mol struct {
			Sample string  `json:"sample"`
			Score  float64 `json:"score"`
		}
		if err := json.Unmarshal(element, &mol); err != nil {
			continue
		}
		candidates = append(candidates, types.CandidateMolecule{SMILES: mol.Sample, Score: mol.Score})
	}
	return candidates, nil
}

// decodeMoleculeList handles both encodings of the molecules field: a JSON
// array, or a JSON string containing an array.
func decodeMoleculeList(raw json.RawMessage) ([]json.RawMessage, error) {
	var doubleEncoded string
	if err := json.Unmarshal(raw, &doubleEncoded); err == nil {
		raw = json.RawMessage(doubleEncoded)
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

// DockingRequest holds DiffDock parameters. The protein structure is sent
// base64-encoded.
type DockingRequest struct {
	ProteinPDB   string
	LigandSMILES string
	NumPoses     int
}

// DockingResult holds docked poses with per-pose confidence.
type DockingResult struct {
	Poses      []string  `json:"poses"`
	Confidence []float64 `json:"position_confidence"`
}

// PredictDocking docks a ligand into a protein structure with DiffDock.
func (c *Client) PredictDocking(ctx context.Context, req DockingRequest) (*DockingResult, error) {
	if req.ProteinPDB == "" || req.LigandSMILES == "" {
		return nil, &Error{Endpoint: endpointDiffDock, Kind: KindRejected, Message: "protein structure and ligand SMILES are required"}
	}
	if req.NumPoses <= 0 {
		req.NumPoses = 10
	}

	payload := map[string]interface{}{
		"protein":   base64.StdEncoding.EncodeToString([]byte(req.ProteinPDB)),
		"ligand":    req.LigandSMILES,
		"num_poses": req.NumPoses,
	}
	var result DockingResult
	if err := c.callNIM(ctx, endpointDiffDock, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health reports which NIM services answered probes.
type Health struct {
	LLMAPI     bool     `json:"llm_api"`
	BiologyAPI bool     `json:"biology_api"`
	Services   []string `json:"available_services"`
}

// CheckHealth probes the LLM API and the biology services with minimal
// requests. Probe failures mark the service down rather than erroring.
func (c *Client) CheckHealth(ctx context.Context) *Health {
	health := &Health{Services: []string{}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.LLMURL+"/models", nil)
	if err == nil {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		if resp, err := c.httpClient.Do(req); err == nil {
			health.LLMAPI = resp.StatusCode == http.StatusOK
			_ = resp.Body.Close()
		}
	}

	probe := GenerateRequest{
		NumMolecules: 1,
		Algorithm:    "CMA-ES",
		PropertyName: "QED",
		Particles:    5,
		Iterations:   1,
		Seed:         "CCO",
	}
	var molmimResp map[string]interface{}
	if err := c.callNIM(ctx, endpointMolMIM, probe, &molmimResp); err == nil {
		health.BiologyAPI = true
		health.Services = append(health.Services, "molmim")
	}

	var esmfoldResp map[string]interface{}
	if err := c.callNIM(ctx, endpointESMFold, map[string]string{"sequence": "MVLSPA"}, &esmfoldResp); err == nil {
		health.Services = append(health.Services, "esmfold")
	}

	return health
}
