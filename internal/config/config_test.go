package config

import (
	"testing"
	"time"
)

func TestParseCategories(t *testing.T) {
	categories, err := ParseCategories("billing:Billing Support, technical:Technical Support")
	if err != nil {
		t.Fatalf("ParseCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Key != "billing" || categories[0].Label != "Billing Support" {
		t.Fatalf("unexpected first category: %+v", categories[0])
	}
	if categories[1].Key != "technical" {
		t.Fatalf("unexpected second category: %+v", categories[1])
	}
}

func TestParseCategoriesRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "nolabel", ":Label", "key:"} {
		if _, err := ParseCategories(raw); err == nil {
			t.Errorf("ParseCategories(%q) accepted malformed input", raw)
		}
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without DISCORD_TOKEN")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Support.SelectTimeout != 60*time.Second {
		t.Fatalf("SelectTimeout = %v, want 60s", cfg.Support.SelectTimeout)
	}
	if len(cfg.Support.Categories) == 0 {
		t.Fatal("no default categories")
	}
	if cfg.Discord.CommandPrefix != "!" {
		t.Fatalf("CommandPrefix = %q", cfg.Discord.CommandPrefix)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Fatalf("Addr = %q", cfg.App.Addr())
	}
}

func TestLoadParsesSupportSettings(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("SUPPORT_ROLE_IDS", "100, 200")
	t.Setenv("SUPPORT_CLOSE_REASONS", "Resolved,Spam")
	t.Setenv("SUPPORT_SELECT_TIMEOUT_SECONDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Support.SupportRoleIDs) != 2 || cfg.Support.SupportRoleIDs[1] != "200" {
		t.Fatalf("SupportRoleIDs = %v", cfg.Support.SupportRoleIDs)
	}
	if len(cfg.Support.CloseReasons) != 2 || cfg.Support.CloseReasons[1] != "Spam" {
		t.Fatalf("CloseReasons = %v", cfg.Support.CloseReasons)
	}
	if cfg.Support.SelectTimeout != 30*time.Second {
		t.Fatalf("SelectTimeout = %v", cfg.Support.SelectTimeout)
	}
}
