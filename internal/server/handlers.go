package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MichaelCrowe11/CroweLM/internal/db"
	"github.com/MichaelCrowe11/CroweLM/internal/llm"
	"github.com/MichaelCrowe11/CroweLM/internal/pipeline"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// RunRequest represents the request body for /run and /run/stream. Exactly
// one of target_id and sequence must be set.
type RunRequest struct {
	TargetID           string `json:"target_id,omitempty" validate:"required_without=Sequence,excluded_with=Sequence"`
	Sequence           string `json:"sequence,omitempty"`
	GenerateCandidates *bool  `json:"generate_candidates,omitempty"`
	CandidateCount     int    `json:"candidate_count,omitempty" validate:"omitempty,min=1,max=100"`
	Render             *bool  `json:"render,omitempty"`
}

// ChatRequest represents the request body for /chat
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	Model   string `json:"model,omitempty" validate:"omitempty,oneof=lite standard advanced"`
}

// GenerateMoleculesRequest represents the request body for /molecules/generate
type GenerateMoleculesRequest struct {
	NumMolecules int    `json:"num_molecules,omitempty" validate:"omitempty,min=1,max=100"`
	SeedSMILES   string `json:"seed_smiles,omitempty"`
}

// PredictStructureRequest represents the request body for /structures/predict
type PredictStructureRequest struct {
	Sequence string `json:"sequence" validate:"required"`
}

// handleRun executes a full pipeline run and returns the run envelope.
// Stage failures are inside the envelope; only orchestration failures
// surface as HTTP errors.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, extractValidationErrors(err))
		return
	}

	log.Printf("Starting pipeline run (target=%q, sequence=%d residues)", req.TargetID, len(req.Sequence))

	result, err := s.executeRun(r.Context(), req, nil)
	s.recordRunMetrics(result, err)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Pipeline run failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleRunStream executes a pipeline run, streaming stage events via SSE
// and finishing with a result event carrying the full envelope.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, extractValidationErrors(err))
		return
	}

	stream, err := newSSEStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting streaming pipeline run...")

	onProgress := func(event pipeline.ProgressEvent) {
		if err := stream.send("stage", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	}

	result, err := s.executeRun(r.Context(), req, onProgress)
	s.recordRunMetrics(result, err)
	if err != nil {
		log.Printf("Pipeline run failed: %v", err)
		stream.sendError(err.Error())
		return
	}

	if err := stream.send("result", result); err != nil {
		log.Printf("Error writing SSE result: %v", err)
	}
}

// executeRun builds per-request options over the server defaults and runs
// the pipeline.
func (s *Server) executeRun(ctx context.Context, req RunRequest, onProgress pipeline.ProgressCallback) (*pipeline.Result, error) {
	opts := s.opts
	opts.Run.GenerateCandidates = true
	if req.GenerateCandidates != nil {
		opts.Run.GenerateCandidates = *req.GenerateCandidates
	}
	if req.CandidateCount > 0 {
		opts.Run.CandidateCount = req.CandidateCount
	}
	if req.Render != nil {
		opts.Run.RenderArtifacts = *req.Render
	}
	opts.Verbose = false
	opts.OnProgress = onProgress

	p := pipeline.New(s.deps, opts)
	if req.Sequence != "" {
		return p.RunSequence(ctx, req.Sequence)
	}
	return p.Run(ctx, req.TargetID)
}

// recordRunMetrics counts a finished run and its failed stages.
func (s *Server) recordRunMetrics(result *pipeline.Result, err error) {
	outcome := "completed"
	if err != nil {
		outcome = "failed"
	}
	s.metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()

	if result == nil || result.Run == nil {
		return
	}
	for _, stage := range result.Run.Stages {
		if stage.Status == types.StageFailed {
			s.metrics.StageFailuresTotal.WithLabelValues(string(stage.Name)).Inc()
		}
	}
}

// handleTarget resolves a target identifier, serving a cached record when
// the database holds a fresh one.
func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("id")
	if identifier == "" {
		s.errorResponse(w, http.StatusBadRequest, "Target identifier is required")
		return
	}

	if s.db != nil {
		cached, err := s.db.GetTargetRecord(r.Context(), identifier, s.cacheAge)
		if err != nil {
			log.Printf("Warning: target cache read failed: %v", err)
		} else if cached != nil {
			s.jsonResponse(w, http.StatusOK, cached)
			return
		}
	}

	record := s.deps.Resolver.Resolve(r.Context(), identifier)

	if s.db != nil {
		if err := s.db.SaveTargetRecord(r.Context(), record); err != nil {
			log.Printf("Warning: target cache write failed: %v", err)
		}
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleGenerateMolecules runs a single MolMIM generation over the server's
// default generation parameters.
func (s *Server) handleGenerateMolecules(w http.ResponseWriter, r *http.Request) {
	var req GenerateMoleculesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, extractValidationErrors(err))
		return
	}

	genReq := s.opts.Generation
	if req.NumMolecules > 0 {
		genReq.NumMolecules = req.NumMolecules
	}
	if req.SeedSMILES != "" {
		genReq.Seed = req.SeedSMILES
	}

	candidates, err := s.deps.Generator.GenerateMolecules(r.Context(), genReq)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"molecules": candidates,
		"count":     len(candidates),
	})
}

// handlePredictStructure folds a single sequence. The fold ceiling applies
// here exactly as in the pipeline, but as a rejection rather than a skip.
func (s *Server) handlePredictStructure(w http.ResponseWriter, r *http.Request) {
	var req PredictStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, extractValidationErrors(err))
		return
	}

	sequence := strings.ToUpper(strings.TrimSpace(req.Sequence))
	ceiling := s.opts.FoldCeiling
	if ceiling <= 0 {
		ceiling = pipeline.DefaultFoldCeiling
	}
	if len(sequence) > ceiling {
		s.errorResponse(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("sequence length %d exceeds the %d-residue limit", len(sequence), ceiling))
		return
	}

	pdb, err := s.deps.Folder.PredictStructure(r.Context(), sequence)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"pdb":      pdb,
		"residues": len(sequence),
	})
}

// handleChat forwards a message to the chat model.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, extractValidationErrors(err))
		return
	}

	tier := llm.TierStandard
	if req.Model != "" {
		tier = llm.ModelTier(req.Model)
	}

	response, err := s.chat.Complete(r.Context(), req.Message, tier)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"response": response,
		"model":    s.chat.GetModel(tier),
	})
}

// handleListRuns lists stored runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filters := db.RunFilters{
		TargetID: r.URL.Query().Get("target"),
		Status:   r.URL.Query().Get("status"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filters.Limit = limit
	}

	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	runs, err := s.db.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns one stored run with its stages.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}
