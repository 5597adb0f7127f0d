package domain

import "fmt"

// AccessLevel ranks the platform's subscription and privilege tiers. Higher
// values strictly include the capabilities of lower ones.
type AccessLevel int

const (
	LevelBasic AccessLevel = iota + 1
	LevelProfessional
	LevelBusiness
	LevelEnterprise
	LevelGovernment
	LevelClassified
	LevelMaster
)

// AllLevels lists every level in ascending rank order.
var AllLevels = []AccessLevel{
	LevelBasic,
	LevelProfessional,
	LevelBusiness,
	LevelEnterprise,
	LevelGovernment,
	LevelClassified,
	LevelMaster,
}

var levelNames = map[AccessLevel]string{
	LevelBasic:        "basic",
	LevelProfessional: "professional",
	LevelBusiness:     "business",
	LevelEnterprise:   "enterprise",
	LevelGovernment:   "government",
	LevelClassified:   "classified",
	LevelMaster:       "master",
}

func (l AccessLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func (l AccessLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// AtLeast reports whether l ranks at or above other.
func (l AccessLevel) AtLeast(other AccessLevel) bool {
	return l >= other
}

// ParseAccessLevel resolves a level by its lowercase name.
func ParseAccessLevel(name string) (AccessLevel, error) {
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown access level %q", name)
}

// AuditLevel selects how much of a session's activity is written to the
// audit pipeline.
type AuditLevel string

const (
	AuditBasic    AuditLevel = "basic"
	AuditDetailed AuditLevel = "detailed"
	AuditFull     AuditLevel = "full"
)

// AccessProfile is the immutable capability set attached to every session
// granted at a given level.
type AccessProfile struct {
	Level        AccessLevel
	Permissions  []string
	Features     []string
	Restrictions []string
	AuditLevel   AuditLevel
}

func (p AccessProfile) HasPermission(perm string) bool {
	for _, candidate := range p.Permissions {
		if candidate == perm || candidate == "*" {
			return true
		}
	}
	return false
}

func (p AccessProfile) HasRestriction(restriction string) bool {
	for _, candidate := range p.Restrictions {
		if candidate == restriction {
			return true
		}
	}
	return false
}
