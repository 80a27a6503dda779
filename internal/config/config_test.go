package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "config")
	require.NoError(t, err)

	assert.Equal(t, BackendVision, cfg.Annotator.Backend)
	assert.Equal(t, "global", cfg.Metadata.Scope)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.Metadata.Legacy.Enabled)
	assert.Equal(t, "imageContent", cfg.Metadata.Legacy.TemplateKey)
	require.Len(t, cfg.Metadata.Templates, 2)
	assert.Equal(t, SkillTemplateConfig{
		TemplateKey: "keywords",
		Class:       "keyword",
		Title:       "Topics",
		Categories:  []string{"logoAnnotations", "labelAnnotations"},
	}, cfg.Metadata.Templates[0])
	assert.Equal(t, "transcripts", cfg.Metadata.Templates[1].TemplateKey)
	assert.Contains(t, cfg.Vision.Features, "IMAGE_PROPERTIES")
	assert.Equal(t, 10, cfg.Scheduler.BatchSize)
	assert.Equal(t, 5, cfg.Scheduler.MaxAttempts)
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
appName: skill-test
annotator:
  backend: gemini
metadata:
  scope: enterprise
  legacy:
    enabled: true
  templates:
    - templateKey: topics
      class: keyword
      title: Labels
      categories: [labelAnnotations]
scheduler:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir, "config")
	require.NoError(t, err)
	assert.Equal(t, "skill-test", cfg.AppName)
	assert.Equal(t, BackendGemini, cfg.Annotator.Backend)
	assert.Equal(t, "enterprise", cfg.Metadata.Scope)
	assert.True(t, cfg.Metadata.Legacy.Enabled)
	assert.Equal(t, "keywords", cfg.Metadata.Legacy.Field)
	require.Len(t, cfg.Metadata.Templates, 1)
	assert.Equal(t, "topics", cfg.Metadata.Templates[0].TemplateKey)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Annotator: AnnotatorConfig{Backend: BackendVision},
			Metadata: MetadataConfig{
				Scope: "global",
				Templates: []SkillTemplateConfig{
					{TemplateKey: "keywords", Class: "keyword", Title: "Topics", Categories: []string{"labelAnnotations"}},
				},
			},
			Scheduler: SchedulerConfig{Enabled: true, BatchSize: 5, MaxAttempts: 3},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Annotator.Backend = "rekognition" }},
		{"empty scope", func(c *Config) { c.Metadata.Scope = "" }},
		{"unknown class", func(c *Config) { c.Metadata.Templates[0].Class = "faces" }},
		{"empty template key", func(c *Config) { c.Metadata.Templates[0].TemplateKey = "" }},
		{"no categories", func(c *Config) { c.Metadata.Templates[0].Categories = nil }},
		{"duplicate template", func(c *Config) {
			c.Metadata.Templates = append(c.Metadata.Templates, c.Metadata.Templates[0])
		}},
		{"legacy without field", func(c *Config) {
			c.Metadata.Legacy = LegacyTemplateConfig{Enabled: true, TemplateKey: "imageContent"}
		}},
		{"legacy collides with template", func(c *Config) {
			c.Metadata.Legacy = LegacyTemplateConfig{Enabled: true, TemplateKey: "keywords", Field: "text"}
		}},
		{"zero batch size", func(c *Config) { c.Scheduler.BatchSize = 0 }},
		{"zero max attempts", func(c *Config) { c.Scheduler.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
