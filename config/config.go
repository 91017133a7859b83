// Package config loads pipeline configuration from YAML. Every tunable
// threshold in the layout and segmentation heuristics is calibrated, not
// derived, so deployments need a way to adjust them without recompiling.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/cvlayout"
	"github.com/tsawler/cvlayout/layout"
	"github.com/tsawler/cvlayout/learn"
	"github.com/tsawler/cvlayout/section"
)

// Config is the serialized pipeline configuration.
type Config struct {
	Layout    LayoutConfig    `yaml:"layout"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Learner   LearnerConfig   `yaml:"learner"`
	Batch     BatchConfig     `yaml:"batch"`
}

// LayoutConfig covers column, region and line detection.
type LayoutConfig struct {
	MinGapWidth       float64 `yaml:"min_gap_width"`        // 0 = dynamic
	MinWordsPerColumn int     `yaml:"min_words_per_column"` // survival floor
	SmoothWindow      int     `yaml:"smooth_window"`
	ValleyDepth       float64 `yaml:"valley_depth"`
	YTolerance        float64 `yaml:"y_tolerance"`
	UseRegions        bool    `yaml:"use_regions"`
	MinBandGap        float64 `yaml:"min_band_gap"`
	MergeConfidence   float64 `yaml:"merge_confidence"`
	MaxTokens         int     `yaml:"max_tokens"`
}

// SegmenterConfig covers the unknown-heading heuristics.
type SegmenterConfig struct {
	MaxHeadingWords    int     `yaml:"max_heading_words"`
	MaxHeadingChars    int     `yaml:"max_heading_chars"`
	FontRatio          float64 `yaml:"font_ratio"`
	BoldThreshold      float64 `yaml:"bold_threshold"`
	UppercaseThreshold float64 `yaml:"uppercase_threshold"`
}

// LearnerConfig covers the vocabulary store and classification thresholds.
type LearnerConfig struct {
	// StorePath is the vocabulary file; empty disables persistence.
	StorePath string `yaml:"store_path"`

	// StoreBackend selects the representation: "json", "log" or "sqlite".
	StoreBackend string `yaml:"store_backend"`

	ClassifyThreshold    float64 `yaml:"classify_threshold"`
	ProposeMinFrequency  int     `yaml:"propose_min_frequency"`
	ProposeMinConfidence float64 `yaml:"propose_min_confidence"`
}

// BatchConfig covers the worker pool.
type BatchConfig struct {
	Workers int      `yaml:"workers"`
	Timeout Duration `yaml:"timeout"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the calibrated defaults used when no file is given.
func Default() Config {
	cols := layout.DefaultColumnConfig()
	lines := layout.DefaultLineConfig()
	regions := layout.DefaultRegionConfig()
	seg := section.DefaultSegmenterConfig()
	return Config{
		Layout: LayoutConfig{
			MinGapWidth:       cols.MinGapWidth,
			MinWordsPerColumn: cols.MinWordsPerColumn,
			SmoothWindow:      cols.SmoothWindow,
			ValleyDepth:       cols.ValleyDepth,
			YTolerance:        lines.YTolerance,
			MinBandGap:        regions.MinBandGap,
			MergeConfidence:   regions.MergeConfidence,
		},
		Segmenter: SegmenterConfig{
			MaxHeadingWords:    seg.MaxHeadingWords,
			MaxHeadingChars:    seg.MaxHeadingChars,
			FontRatio:          seg.FontRatio,
			BoldThreshold:      seg.BoldThreshold,
			UppercaseThreshold: seg.UppercaseThreshold,
		},
		Learner: LearnerConfig{
			StoreBackend:         "json",
			ClassifyThreshold:    learn.DefaultClassifyThreshold,
			ProposeMinFrequency:  learn.DefaultProposeMinFrequency,
			ProposeMinConfidence: learn.DefaultProposeMinConfidence,
		},
		Batch: BatchConfig{},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected so a
// typo in a threshold name fails loudly instead of silently using the
// default.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects out-of-range thresholds.
func (c Config) Validate() error {
	if c.Layout.ValleyDepth < 0 || c.Layout.ValleyDepth > 1 {
		return fmt.Errorf("layout.valley_depth %v outside [0,1]", c.Layout.ValleyDepth)
	}
	if c.Layout.MergeConfidence < 0 || c.Layout.MergeConfidence > 1 {
		return fmt.Errorf("layout.merge_confidence %v outside [0,1]", c.Layout.MergeConfidence)
	}
	if c.Segmenter.FontRatio < 1 {
		return fmt.Errorf("segmenter.font_ratio %v must be >= 1", c.Segmenter.FontRatio)
	}
	if t := c.Learner.ClassifyThreshold; t < 0 || t > 1 {
		return fmt.Errorf("learner.classify_threshold %v outside [0,1]", t)
	}
	switch c.Learner.StoreBackend {
	case "", "json", "log", "sqlite":
	default:
		return fmt.Errorf("learner.store_backend %q not one of json, log, sqlite", c.Learner.StoreBackend)
	}
	return nil
}

// OpenStore opens the configured vocabulary store, or nil when persistence
// is disabled.
func (c Config) OpenStore() (learn.Store, error) {
	if c.Learner.StorePath == "" {
		return nil, nil
	}
	switch c.Learner.StoreBackend {
	case "", "json":
		return learn.OpenJSONStore(c.Learner.StorePath)
	case "log":
		return learn.OpenLogStore(c.Learner.StorePath)
	case "sqlite":
		return learn.OpenSQLStore(c.Learner.StorePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.Learner.StoreBackend)
	}
}

// Vocabulary builds the section vocabulary over the configured store.
func (c Config) Vocabulary(store learn.Store, classifier learn.Classifier) *learn.Vocabulary {
	return learn.NewVocabulary(section.DefaultSeeds(), store, learn.Options{
		ClassifyThreshold:    c.Learner.ClassifyThreshold,
		ProposeMinFrequency:  c.Learner.ProposeMinFrequency,
		ProposeMinConfidence: c.Learner.ProposeMinConfidence,
		Classifier:           classifier,
	})
}

// Parser builds a parser from the configuration.
func (c Config) Parser(vocab *learn.Vocabulary) *cvlayout.Parser {
	cols := layout.ColumnConfig{
		MinGapWidth:       c.Layout.MinGapWidth,
		MinWordsPerColumn: c.Layout.MinWordsPerColumn,
		SmoothWindow:      c.Layout.SmoothWindow,
		ValleyDepth:       c.Layout.ValleyDepth,
		DynamicMinWords:   true,
	}
	p := cvlayout.NewWithVocabulary(vocab).
		WithColumnConfig(cols).
		WithLineConfig(layout.LineConfig{YTolerance: c.Layout.YTolerance}).
		WithSegmenterConfig(section.SegmenterConfig{
			MaxHeadingWords:    c.Segmenter.MaxHeadingWords,
			MaxHeadingChars:    c.Segmenter.MaxHeadingChars,
			FontRatio:          c.Segmenter.FontRatio,
			BoldThreshold:      c.Segmenter.BoldThreshold,
			UppercaseThreshold: c.Segmenter.UppercaseThreshold,
		})
	if c.Layout.UseRegions {
		p = p.WithRegionConfig(layout.RegionConfig{
			MinBandGap:      c.Layout.MinBandGap,
			MergeConfidence: c.Layout.MergeConfidence,
			Columns:         cols,
		})
	}
	if c.Layout.MaxTokens > 0 {
		p = p.WithMaxTokens(c.Layout.MaxTokens)
	}
	return p
}
