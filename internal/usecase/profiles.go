package usecase

import (
	"fmt"
	"sort"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
)

// ProfileRegistry resolves the capability profile attached to each access
// level. Profiles are built once at startup and shared read-only between
// every session at the same level.
type ProfileRegistry struct {
	profiles map[domain.AccessLevel]*domain.AccessProfile
}

// NewProfileRegistry builds the built-in tier catalog. The master profile is
// derived from the others: the union of every permission and feature, no
// restrictions, full audit.
func NewProfileRegistry() (*ProfileRegistry, error) {
	profiles := map[domain.AccessLevel]*domain.AccessProfile{
		domain.LevelBasic: {
			Level:        domain.LevelBasic,
			Permissions:  []string{"scan:basic", "report:view"},
			Features:     []string{"vulnerability_scan", "monthly_report"},
			Restrictions: []string{"no_advanced_features", "no_api_access", "rate_limited"},
			AuditLevel:   domain.AuditBasic,
		},
		domain.LevelProfessional: {
			Level:        domain.LevelProfessional,
			Permissions:  []string{"scan:basic", "scan:deep", "report:view", "report:export", "api:read"},
			Features:     []string{"vulnerability_scan", "deep_scan", "weekly_report", "api_access"},
			Restrictions: []string{"no_custom_integrations", "rate_limited"},
			AuditLevel:   domain.AuditBasic,
		},
		domain.LevelBusiness: {
			Level:        domain.LevelBusiness,
			Permissions:  []string{"scan:basic", "scan:deep", "scan:scheduled", "report:view", "report:export", "api:read", "api:write", "team:manage"},
			Features:     []string{"vulnerability_scan", "deep_scan", "scheduled_scan", "daily_report", "api_access", "team_accounts"},
			Restrictions: []string{"no_custom_integrations"},
			AuditLevel:   domain.AuditDetailed,
		},
		domain.LevelEnterprise: {
			Level:        domain.LevelEnterprise,
			Permissions:  []string{"scan:basic", "scan:deep", "scan:scheduled", "scan:continuous", "report:view", "report:export", "api:read", "api:write", "team:manage", "integration:manage"},
			Features:     []string{"vulnerability_scan", "deep_scan", "scheduled_scan", "continuous_scan", "realtime_report", "api_access", "team_accounts", "custom_integrations", "dedicated_support"},
			Restrictions: []string{"no_classified_data"},
			AuditLevel:   domain.AuditDetailed,
		},
		domain.LevelGovernment: {
			Level:        domain.LevelGovernment,
			Permissions:  []string{"scan:basic", "scan:deep", "scan:scheduled", "scan:continuous", "report:view", "report:export", "api:read", "api:write", "team:manage", "integration:manage", "compliance:audit"},
			Features:     []string{"vulnerability_scan", "deep_scan", "scheduled_scan", "continuous_scan", "realtime_report", "api_access", "team_accounts", "custom_integrations", "dedicated_support", "compliance_reporting", "air_gapped_deploy"},
			Restrictions: []string{"mfa_mandatory"},
			AuditLevel:   domain.AuditFull,
		},
		domain.LevelClassified: {
			Level:        domain.LevelClassified,
			Permissions:  []string{"scan:basic", "scan:deep", "scan:scheduled", "scan:continuous", "report:view", "report:export", "api:read", "api:write", "team:manage", "integration:manage", "compliance:audit", "classified:read", "classified:write"},
			Features:     []string{"vulnerability_scan", "deep_scan", "scheduled_scan", "continuous_scan", "realtime_report", "api_access", "team_accounts", "custom_integrations", "dedicated_support", "compliance_reporting", "air_gapped_deploy", "classified_workloads", "threat_intelligence"},
			Restrictions: []string{"mfa_mandatory", "session_recording"},
			AuditLevel:   domain.AuditFull,
		},
	}

	profiles[domain.LevelMaster] = masterProfile(profiles)

	registry := &ProfileRegistry{profiles: profiles}
	if err := registry.validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

// ProfileFor is total over valid levels: every enumerated level resolves to
// a profile, enforced at construction.
func (r *ProfileRegistry) ProfileFor(level domain.AccessLevel) (*domain.AccessProfile, error) {
	profile, ok := r.profiles[level]
	if !ok {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnknownAccessLevel, level)
	}
	return profile, nil
}

func (r *ProfileRegistry) validate() error {
	for _, level := range domain.AllLevels {
		profile, ok := r.profiles[level]
		if !ok {
			return fmt.Errorf("profile catalog is missing level %s", level)
		}
		if profile.Level != level {
			return fmt.Errorf("profile for %s carries mismatched level %s", level, profile.Level)
		}
	}
	return nil
}

// masterProfile folds every lower tier into one unrestricted profile.
func masterProfile(lower map[domain.AccessLevel]*domain.AccessProfile) *domain.AccessProfile {
	permSet := make(map[string]struct{})
	featSet := make(map[string]struct{})
	for _, profile := range lower {
		for _, p := range profile.Permissions {
			permSet[p] = struct{}{}
		}
		for _, f := range profile.Features {
			featSet[f] = struct{}{}
		}
	}

	perms := make([]string, 0, len(permSet))
	for p := range permSet {
		perms = append(perms, p)
	}
	sort.Strings(perms)

	feats := make([]string, 0, len(featSet))
	for f := range featSet {
		feats = append(feats, f)
	}
	sort.Strings(feats)

	return &domain.AccessProfile{
		Level:        domain.LevelMaster,
		Permissions:  perms,
		Features:     feats,
		Restrictions: []string{},
		AuditLevel:   domain.AuditFull,
	}
}
