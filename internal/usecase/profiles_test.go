package usecase

import (
	"testing"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
)

func TestProfileRegistryIsTotalOverLevels(t *testing.T) {
	registry, err := NewProfileRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	for _, level := range domain.AllLevels {
		profile, err := registry.ProfileFor(level)
		if err != nil {
			t.Fatalf("profile for %s: %v", level, err)
		}
		if profile.Level != level {
			t.Fatalf("profile for %s carries level %s", level, profile.Level)
		}
	}
}

func TestProfileRegistryUnknownLevel(t *testing.T) {
	registry, err := NewProfileRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if _, err := registry.ProfileFor(domain.AccessLevel(99)); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestBasicProfileCarriesAdvancedFeatureRestriction(t *testing.T) {
	registry, err := NewProfileRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	basic, err := registry.ProfileFor(domain.LevelBasic)
	if err != nil {
		t.Fatalf("profile for basic: %v", err)
	}
	if !basic.HasRestriction("no_advanced_features") {
		t.Fatalf("basic profile must restrict advanced features, got %v", basic.Restrictions)
	}
}

func TestMasterProfileIsUnionWithNoRestrictions(t *testing.T) {
	registry, err := NewProfileRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	master, err := registry.ProfileFor(domain.LevelMaster)
	if err != nil {
		t.Fatalf("profile for master: %v", err)
	}

	if len(master.Restrictions) != 0 {
		t.Fatalf("master profile must have no restrictions, got %v", master.Restrictions)
	}
	if master.AuditLevel != domain.AuditFull {
		t.Fatalf("master profile must use full audit, got %s", master.AuditLevel)
	}

	for _, level := range domain.AllLevels {
		if level == domain.LevelMaster {
			continue
		}
		profile, err := registry.ProfileFor(level)
		if err != nil {
			t.Fatalf("profile for %s: %v", level, err)
		}
		for _, perm := range profile.Permissions {
			if !master.HasPermission(perm) {
				t.Fatalf("master profile is missing %s permission %q", level, perm)
			}
		}
	}
}
