package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg := Load()

	if cfg.Pipeline.MaxPhrasesPerCategory != 10 {
		t.Fatalf("expected default 10 phrases per category, got %d", cfg.Pipeline.MaxPhrasesPerCategory)
	}
	if cfg.Pipeline.ExtractionTarget != 15 {
		t.Fatalf("expected default extraction target 15, got %d", cfg.Pipeline.ExtractionTarget)
	}
	if cfg.Pipeline.MaxRetries != 3 {
		t.Fatalf("expected default 3 retries, got %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.DedupOverlapThreshold != 0.4 {
		t.Fatalf("expected default overlap threshold 0.4, got %f", cfg.Pipeline.DedupOverlapThreshold)
	}
	if cfg.Pipeline.Mode != "sequential" {
		t.Fatalf("expected sequential default mode, got %s", cfg.Pipeline.Mode)
	}
	if len(cfg.Sites) == 0 {
		t.Fatal("expected at least one default site")
	}
}

func TestLoadMergesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
pipeline:
  mode: parallel
  maxPhrasesPerCategory: 5
  maxConcurrency: 8
generator:
  provider: anthropic
  model: claude-haiku
sites:
  - name: newsfeed
    scanner: headline
    categories:
      - name: sports
        url: https://news.example.org/sports
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Pipeline.Mode != "parallel" {
		t.Fatalf("expected parallel mode, got %s", cfg.Pipeline.Mode)
	}
	if cfg.Pipeline.MaxPhrasesPerCategory != 5 {
		t.Fatalf("expected 5 phrases, got %d", cfg.Pipeline.MaxPhrasesPerCategory)
	}
	if cfg.Pipeline.MaxConcurrency != 8 {
		t.Fatalf("expected concurrency 8, got %d", cfg.Pipeline.MaxConcurrency)
	}
	// Untouched fields keep their defaults.
	if cfg.Pipeline.MaxRetries != 3 {
		t.Fatalf("expected default retries preserved, got %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.Generator.Provider != "anthropic" || cfg.Generator.Model != "claude-haiku" {
		t.Fatalf("generator override lost: %+v", cfg.Generator)
	}
	if len(cfg.Sites) != 1 || cfg.Sites[0].Categories[0].Name != "sports" {
		t.Fatalf("sites override lost: %+v", cfg.Sites)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "postgres://trend:secret@db:5432/trends")
	t.Setenv(generatorKeyEnv, "sk-test")
	t.Setenv(generatorModelEnv, "gpt-test")

	cfg := Load()

	if cfg.Database.DSN != "postgres://trend:secret@db:5432/trends" {
		t.Fatalf("dsn override lost: %s", cfg.Database.DSN)
	}
	if cfg.Generator.APIKey != "sk-test" || cfg.Generator.Model != "gpt-test" {
		t.Fatalf("generator env override lost: %+v", cfg.Generator)
	}
}

func TestSchedulerLocationFallsBackToUTC(t *testing.T) {
	s := SchedulerConfig{Timezone: "Not/AZone"}
	if s.Location() != nil && s.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", s.Location())
	}
}

func TestPipelineDurations(t *testing.T) {
	p := PipelineConfig{InterCallDelaySeconds: 1.5, OverallTimeoutSeconds: 60}
	if p.InterCallDelay().Milliseconds() != 1500 {
		t.Fatalf("unexpected inter-call delay: %s", p.InterCallDelay())
	}
	if p.OverallTimeout().Seconds() != 60 {
		t.Fatalf("unexpected overall timeout: %s", p.OverallTimeout())
	}
}
