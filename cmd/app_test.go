package cmd

import (
	"testing"

	"github.com/spigell/tradematch/internal/board"
	"github.com/spigell/tradematch/internal/identity"
	"github.com/spigell/tradematch/internal/matching"
)

func TestBoardConfig(t *testing.T) {
	config := &Config{
		Matching: &MatchingConfig{
			TargetExperience: 8,
			Weights:          matching.Weights{Skills: 2, Experience: 1},
			DefaultLimit:     10,
			ExcludeFile:      "excluded.json",
			Filters:          board.FiltersConfig{Trade: true},
		},
		AI: &AIConfig{Enabled: false, EnrichMatches: true},
	}

	got := boardConfig(config)
	if got.Matching.TargetExperience != 8 || got.Matching.Weights.Skills != 2 {
		t.Fatalf("matching config not carried: %+v", got.Matching)
	}
	if got.DefaultLimit != 10 || got.ExcludeFile != "excluded.json" || !got.Filters.Trade || got.Filters.Country {
		t.Fatalf("unexpected board config: %+v", got)
	}
	if got.EnrichMatches {
		t.Fatalf("enrichment must stay off while ai is disabled")
	}

	config.AI.Enabled = true
	if !boardConfig(config).EnrichMatches {
		t.Fatalf("expected enrichment when ai is enabled")
	}
}

func TestRedacted(t *testing.T) {
	config := &Config{
		Identity: &IdentityConfig{Callers: []identity.Entry{
			{Token: "secret-token", UserID: "emp-1", Role: "EMPLOYER"},
			{TokenFile: "/run/secrets/worker", UserID: "u-1", Role: "WORKER"},
		}},
		AI: &AIConfig{Enabled: true, Gemini: &GeminiConfig{APIKey: "key", Model: "gemini-2.5-flash"}},
	}

	out := redacted(config)
	if out.Identity.Callers[0].Token != "***" || out.Identity.Callers[1].Token != "" {
		t.Fatalf("unexpected redacted callers: %+v", out.Identity.Callers)
	}
	if out.AI.Gemini.APIKey != "***" || out.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected redacted gemini config: %+v", out.AI.Gemini)
	}

	if config.Identity.Callers[0].Token != "secret-token" || config.AI.Gemini.APIKey != "key" {
		t.Fatalf("redacted must not modify the original config")
	}
}
