// Package types provides type definitions for structured data used throughout the discovery pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// Payload keys shared by the orchestrator, report synthesizer, and API
// handlers. Stage payloads are plain maps so the run dump stays readable,
// which makes agreed-on keys the contract between writer and readers.
const (
	PayloadTarget     = "target"
	PayloadMethod     = "method"
	PayloadPDBFile    = "pdb_file"
	PayloadResidues   = "residues"
	PayloadSeed       = "seed"
	PayloadProperty   = "property_optimized"
	PayloadMolecules  = "molecules"
	PayloadRequested  = "requested"
	PayloadAssessment = "assessment"
	PayloadModel      = "model"
	PayloadFiles      = "files"
	PayloadReportFile = "report_file"
)

// TargetFromPayload decodes a target record out of a stage payload value,
// tolerating both the in-memory *TargetRecord and its JSON round-tripped
// map form.
func TargetFromPayload(v interface{}) *TargetRecord {
	if v == nil {
		return nil
	}
	if record, ok := v.(*TargetRecord); ok {
		return record
	}
	if record, ok := v.(TargetRecord); ok {
		return &record
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var record TargetRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil
	}
	return &record
}

// FilesFromPayload decodes a kind-to-path mapping out of a stage payload
// value, tolerating the JSON round-tripped map[string]interface{} form.
func FilesFromPayload(v interface{}) map[string]string {
	if v == nil {
		return nil
	}
	if files, ok := v.(map[string]string); ok {
		return files
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var files map[string]string
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil
	}
	return files
}

// PayloadString returns the string stored under key, or "" when the key is
// absent or holds a non-string value.
func PayloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}
