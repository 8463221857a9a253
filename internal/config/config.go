// Package config loads and merges the ranking engine's tunable parameters.
//
// Configuration layers in increasing precedence:
//  1. hardcoded defaults (DefaultRankingConfig)
//  2. a named variant (e.g. "v2") selected by file or request
//  3. a ranking-weights*.yaml file
//  4. environment variables
//  5. per-request overrides passed by the caller
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	rankerrors "github.com/aman-health/practitioner-rank/internal/errors"

	"gopkg.in/yaml.v3"
)

// FieldWeights controls how many times each practitioner field is repeated
// in the BM25 weighted text blob.
type FieldWeights struct {
	ClinicalExpertise    float64 `yaml:"clinical_expertise" json:"clinical_expertise"`
	ProcedureGroups       float64 `yaml:"procedure_groups" json:"procedure_groups"`
	Specialty             float64 `yaml:"specialty" json:"specialty"`
	SpecialtyDescription  float64 `yaml:"specialty_description" json:"specialty_description"`
	Description           float64 `yaml:"description" json:"description"`
	About                 float64 `yaml:"about" json:"about"`
	Name                  float64 `yaml:"name" json:"name"`
	Memberships           float64 `yaml:"memberships" json:"memberships"`
	AddressLocality       float64 `yaml:"address_locality" json:"address_locality"`
	Title                 float64 `yaml:"title" json:"title"`
	InsuranceProviders    float64 `yaml:"insurance_providers" json:"insurance_providers"`
}

// DefaultFieldWeights returns the default field weight table.
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		ClinicalExpertise:   3.0,
		ProcedureGroups:     2.8,
		Specialty:           2.5,
		SpecialtyDescription: 2.0,
		Description:         1.5,
		About:               1.0,
		Name:                1.0,
		Memberships:         0.8,
		AddressLocality:     0.5,
		Title:               0.3,
		InsuranceProviders:  0.3,
	}
}

// SemanticOptions controls optional semantic-score mixing into Stage A.
type SemanticOptions struct {
	// Enabled turns on semantic-score mixing.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Weight is applied to the normalized semantic score.
	Weight float64 `yaml:"weight" json:"weight"`
}

// RankingConfig is the merged parameter set consumed by internal/ranking,
// internal/progressive and internal/pool. Field names mirror the
// RankingConfig fields documented for the ranking engine.
type RankingConfig struct {
	// Variant names this configuration (e.g. "v1", "v2"). Affects which
	// rescoring constants apply (v2 uses AnchorCap).
	Variant string `yaml:"variant" json:"variant"`

	// BM25 parameters.
	K1 float64 `yaml:"k1" json:"k1"`
	B  float64 `yaml:"b" json:"b"`

	// Rescoring weights.
	IntentTermWeight   float64 `yaml:"intent_term_weight" json:"intent_term_weight"`
	AnchorPhraseWeight float64 `yaml:"anchor_phrase_weight" json:"anchor_phrase_weight"`
	AnchorCap          float64 `yaml:"anchor_cap" json:"anchor_cap"`
	Negative1          float64 `yaml:"negative_1" json:"negative_1"`
	Negative2          float64 `yaml:"negative_2" json:"negative_2"`
	Negative4          float64 `yaml:"negative_4" json:"negative_4"`
	SubspecialtyFactor float64 `yaml:"subspecialty_factor" json:"subspecialty_factor"`
	SubspecialtyCap    float64 `yaml:"subspecialty_cap" json:"subspecialty_cap"`
	SafeLane1          float64 `yaml:"safe_lane_1" json:"safe_lane_1"`
	SafeLane2          float64 `yaml:"safe_lane_2" json:"safe_lane_2"`
	SafeLane3OrMore    float64 `yaml:"safe_lane_3_or_more" json:"safe_lane_3_or_more"`

	// Retrieval controls.
	StageATopN            int  `yaml:"stage_a_top_n" json:"stage_a_top_n"`
	StageAIntentTermsCap   int  `yaml:"stage_a_intent_terms_cap" json:"stage_a_intent_terms_cap"`
	IntentTermsInBM25      bool `yaml:"intent_terms_in_bm25" json:"intent_terms_in_bm25"`

	// FieldWeights controls weighted-text construction for BM25.
	FieldWeights FieldWeights `yaml:"field_weights" json:"field_weights"`

	// Semantic controls optional semantic-score mixing.
	Semantic SemanticOptions `yaml:"semantic_options" json:"semantic_options"`
}

// DefaultRankingConfig returns the v1 default configuration.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		Variant: "v1",

		K1: 1.5,
		B:  0.75,

		IntentTermWeight:   0.3,
		AnchorPhraseWeight: 0.5,
		AnchorCap:          0, // unset in v1: no cap applied
		Negative1:          -1.0,
		Negative2:          -2.0,
		Negative4:          -3.0,
		SubspecialtyFactor: 0.3,
		SubspecialtyCap:    0.5,
		SafeLane1:          1.0,
		SafeLane2:          2.0,
		SafeLane3OrMore:    3.0,

		StageATopN:          100,
		StageAIntentTermsCap: 10,
		IntentTermsInBM25:    false,

		FieldWeights: DefaultFieldWeights(),

		Semantic: SemanticOptions{
			Enabled: false,
			Weight:  0,
		},
	}
}

// Variant applies a named tuning variant on top of the default config.
// Unknown variants return the default config unchanged.
func Variant(name string) RankingConfig {
	cfg := DefaultRankingConfig()
	switch name {
	case "", "v1":
		return cfg
	case "v2":
		cfg.Variant = "v2"
		cfg.AnchorPhraseWeight = 0.25
		cfg.AnchorCap = 0.75
		return cfg
	default:
		return cfg
	}
}

// Load merges the default/variant configuration with an optional
// ranking-weights YAML file and environment variable overrides. dir is the
// directory searched for ranking-weights.yaml/.yml; pass "" to skip the
// file layer.
func Load(dir string, variant string) (*RankingConfig, error) {
	cfg := Variant(variant)

	if dir != "" {
		if err := cfg.loadFromFile(dir); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFromFile merges ranking-weights.yaml (preferred) or .yml from dir.
func (c *RankingConfig) loadFromFile(dir string) error {
	for _, name := range []string{"ranking-weights.yaml", "ranking-weights.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return c.loadYAML(path)
	}
	return nil
}

// loadYAML decodes path into a scratch RankingConfig and overlays its
// non-zero fields onto c.
func (c *RankingConfig) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read ranking config file %s: %w", path, err)
	}

	var parsed RankingConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse ranking config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero fields from other onto c. Zero values in a
// partial file mean "use the current value", matching the teacher's merge
// convention.
func (c *RankingConfig) mergeWith(other *RankingConfig) {
	if other.Variant != "" {
		c.Variant = other.Variant
	}
	if other.K1 != 0 {
		c.K1 = other.K1
	}
	if other.B != 0 {
		c.B = other.B
	}
	if other.IntentTermWeight != 0 {
		c.IntentTermWeight = other.IntentTermWeight
	}
	if other.AnchorPhraseWeight != 0 {
		c.AnchorPhraseWeight = other.AnchorPhraseWeight
	}
	if other.AnchorCap != 0 {
		c.AnchorCap = other.AnchorCap
	}
	if other.Negative1 != 0 {
		c.Negative1 = other.Negative1
	}
	if other.Negative2 != 0 {
		c.Negative2 = other.Negative2
	}
	if other.Negative4 != 0 {
		c.Negative4 = other.Negative4
	}
	if other.SubspecialtyFactor != 0 {
		c.SubspecialtyFactor = other.SubspecialtyFactor
	}
	if other.SubspecialtyCap != 0 {
		c.SubspecialtyCap = other.SubspecialtyCap
	}
	if other.SafeLane1 != 0 {
		c.SafeLane1 = other.SafeLane1
	}
	if other.SafeLane2 != 0 {
		c.SafeLane2 = other.SafeLane2
	}
	if other.SafeLane3OrMore != 0 {
		c.SafeLane3OrMore = other.SafeLane3OrMore
	}
	if other.StageATopN != 0 {
		c.StageATopN = other.StageATopN
	}
	if other.StageAIntentTermsCap != 0 {
		c.StageAIntentTermsCap = other.StageAIntentTermsCap
	}
	if other.IntentTermsInBM25 {
		c.IntentTermsInBM25 = other.IntentTermsInBM25
	}

	c.FieldWeights.mergeWith(other.FieldWeights)

	if other.Semantic.Enabled {
		c.Semantic = other.Semantic
	}
}

func (w *FieldWeights) mergeWith(other FieldWeights) {
	if other.ClinicalExpertise != 0 {
		w.ClinicalExpertise = other.ClinicalExpertise
	}
	if other.ProcedureGroups != 0 {
		w.ProcedureGroups = other.ProcedureGroups
	}
	if other.Specialty != 0 {
		w.Specialty = other.Specialty
	}
	if other.SpecialtyDescription != 0 {
		w.SpecialtyDescription = other.SpecialtyDescription
	}
	if other.Description != 0 {
		w.Description = other.Description
	}
	if other.About != 0 {
		w.About = other.About
	}
	if other.Name != 0 {
		w.Name = other.Name
	}
	if other.Memberships != 0 {
		w.Memberships = other.Memberships
	}
	if other.AddressLocality != 0 {
		w.AddressLocality = other.AddressLocality
	}
	if other.Title != 0 {
		w.Title = other.Title
	}
	if other.InsuranceProviders != 0 {
		w.InsuranceProviders = other.InsuranceProviders
	}
}

// applyEnvOverrides reads RANK_* environment variables, matching the
// teacher's AMANMCP_* precedence: env wins over file, file wins over
// defaults.
func (c *RankingConfig) applyEnvOverrides() {
	if v := os.Getenv("RANK_K1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.K1 = f
		}
	}
	if v := os.Getenv("RANK_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.B = f
		}
	}
	if v := os.Getenv("RANK_STAGE_A_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StageATopN = n
		}
	}
	if v := os.Getenv("RANK_SEMANTIC_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Semantic.Enabled = true
			c.Semantic.Weight = f
		}
	}
}

// WriteYAML writes the configuration to path in YAML form.
func (c *RankingConfig) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate enforces the sanity bounds from the ranking engine's error
// handling design: k1 > 0, b in [0,1], weights >= 0. Violations return
// RankingConfigInvalid, never a panic.
func (c *RankingConfig) Validate() error {
	if c.K1 <= 0 {
		return rankerrors.RankingConfigInvalid(fmt.Sprintf("k1 must be > 0, got %v", c.K1), nil)
	}
	if c.B < 0 || c.B > 1 {
		return rankerrors.RankingConfigInvalid(fmt.Sprintf("b must be in [0,1], got %v", c.B), nil)
	}
	if c.StageATopN <= 0 {
		return rankerrors.RankingConfigInvalid(fmt.Sprintf("stage_a_top_n must be > 0, got %v", c.StageATopN), nil)
	}
	if c.StageAIntentTermsCap < 0 {
		return rankerrors.RankingConfigInvalid(fmt.Sprintf("stage_a_intent_terms_cap must be >= 0, got %v", c.StageAIntentTermsCap), nil)
	}
	if err := c.FieldWeights.validate(); err != nil {
		return err
	}
	if c.Semantic.Enabled && c.Semantic.Weight < 0 {
		return rankerrors.RankingConfigInvalid(fmt.Sprintf("semantic_options.weight must be >= 0, got %v", c.Semantic.Weight), nil)
	}
	return nil
}

func (w FieldWeights) validate() error {
	fields := map[string]float64{
		"clinical_expertise":    w.ClinicalExpertise,
		"procedure_groups":      w.ProcedureGroups,
		"specialty":             w.Specialty,
		"specialty_description": w.SpecialtyDescription,
		"description":           w.Description,
		"about":                 w.About,
		"name":                  w.Name,
		"memberships":           w.Memberships,
		"address_locality":      w.AddressLocality,
		"title":                 w.Title,
		"insurance_providers":   w.InsuranceProviders,
	}
	for name, v := range fields {
		if v < 0 {
			return rankerrors.RankingConfigInvalid(fmt.Sprintf("field weight %q must be >= 0, got %v", name, v), nil)
		}
	}
	return nil
}

// MergeRequestOverrides applies a caller-supplied partial override (e.g.
// from the rankctl CLI or an API request body) as the final, highest
// precedence layer.
func (c *RankingConfig) MergeRequestOverrides(override *RankingConfig) {
	if override == nil {
		return
	}
	c.mergeWith(override)
}
