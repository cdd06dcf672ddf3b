package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MichaelCrowe11/CroweLM/internal/nim"
)

// Profile is a named generation preset mapped onto MolMIM parameters.
// Zero fields fall back to the service defaults at request time.
type Profile struct {
	Seed          string  `yaml:"seed" json:"seed,omitempty"`
	NumMolecules  int     `yaml:"num_molecules" json:"num_molecules,omitempty"`
	Algorithm     string  `yaml:"algorithm" json:"algorithm,omitempty"`
	PropertyName  string  `yaml:"property_name" json:"property_name,omitempty"`
	MinSimilarity float64 `yaml:"min_similarity" json:"min_similarity,omitempty"`
	Particles     int     `yaml:"particles" json:"particles,omitempty"`
	Iterations    int     `yaml:"iterations" json:"iterations,omitempty"`
}

// Builtin profile names.
const (
	ProfileDefault = "default"
	ProfileExplore = "explore"
)

// builtinProfiles are always available; a profiles file can add to or
// override them. The default profile mirrors the standard QED run; explore
// trades similarity for coverage, seeding from a bare ring.
func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileDefault: {
			Seed:         nim.AspirinSeed,
			NumMolecules: 10,
			Algorithm:    "CMA-ES",
			PropertyName: "QED",
			Particles:    30,
			Iterations:   10,
		},
		ProfileExplore: {
			Seed:          nim.BenzeneSeed,
			NumMolecules:  20,
			Algorithm:     "CMA-ES",
			PropertyName:  "QED",
			MinSimilarity: 0.3,
			Particles:     50,
			Iterations:    20,
		},
	}
}

// Request converts the profile to MolMIM generation parameters.
func (p Profile) Request() nim.GenerateRequest {
	return nim.GenerateRequest{
		NumMolecules:  p.NumMolecules,
		Algorithm:     p.Algorithm,
		PropertyName:  p.PropertyName,
		MinSimilarity: p.MinSimilarity,
		Particles:     p.Particles,
		Iterations:    p.Iterations,
		Seed:          p.Seed,
	}
}

// LoadProfiles returns the builtin profiles merged with any profiles
// defined in the YAML file at path. File entries override builtins of the
// same name; an empty path returns just the builtins.
func LoadProfiles(path string) (map[string]Profile, error) {
	profiles := builtinProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}

	var loaded map[string]Profile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse profiles YAML: %w", err)
	}

	for name, profile := range loaded {
		profiles[name] = profile
	}
	return profiles, nil
}

// GetProfile resolves a profile by name from the builtins merged with the
// profiles file at path. An empty name resolves the default profile.
func GetProfile(name, path string) (Profile, error) {
	if name == "" {
		name = ProfileDefault
	}

	profiles, err := LoadProfiles(path)
	if err != nil {
		return Profile{}, err
	}

	profile, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return profile, nil
}
