// Package schemas provides JSON Schema validation for remote service payloads.
package schemas

import (
	_ "embed"
)

// MoleculeSchema is the schema for a single generated-molecule element.
// Generation responses arrive as arrays of these; elements that fail
// validation are dropped rather than failing the whole generation.
//
//go:embed molecule.schema.json
var MoleculeSchema string

// ValidateMolecule validates one generated-molecule element.
func ValidateMolecule(jsonContent string) error {
	return ValidateJSONString(MoleculeSchema, jsonContent)
}
