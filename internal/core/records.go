package core

import (
	"errors"
	"strings"
	"time"
)

// SkillTypeFragment marks transaction types that track a named skill
// (e.g. "skill_go", "skill_js").
const SkillTypeFragment = "skill_"

// Well-known transaction type tags used by the platform.
const (
	TypeXPUp   = "up"
	TypeXPDown = "down"
	TypeXP     = "xp"
)

type (
	// Transaction is a single XP-affecting platform event. Records are
	// read-only views over remote data; this system only observes them.
	Transaction struct {
		ID        int64     `json:"id"`
		Type      string    `json:"type"`
		Amount    int64     `json:"amount"`
		CreatedAt time.Time `json:"createdAt"`
		// ObjectName names the platform object (project, module) the
		// transaction belongs to, when the query selects it.
		ObjectName string `json:"relatedObjectName,omitempty"`
	}

	// Audit is a peer review producing a numeric grade. Grade is nil when
	// the review has not been graded yet.
	Audit struct {
		Grade *float64 `json:"grade"`
	}

	// ProfileAttrs carries the free-form user attributes the platform
	// stores as a JSON blob. All fields are optional.
	ProfileAttrs struct {
		Country       string `json:"country,omitempty"`
		PhoneNumber   string `json:"phoneNumber,omitempty"`
		Qualification string `json:"qualification,omitempty"`
		DateOfBirth   string `json:"dateOfBirth,omitempty"`
	}

	// UserProfile is the signed-in user's identity record, passed through
	// without derived logic.
	UserProfile struct {
		ID        int64        `json:"id"`
		Login     string       `json:"login"`
		FirstName string       `json:"firstName"`
		LastName  string       `json:"lastName"`
		Campus    string       `json:"campus,omitempty"`
		Attrs     ProfileAttrs `json:"attrs"`
	}
)

var (
	ErrNegativeAmount = errors.New("negative amount")
	ErrEmptyType      = errors.New("empty transaction type")
)

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Type) == "" {
		return ErrEmptyType
	}
	if t.Amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// IsSkill reports whether the transaction tracks a named skill.
func (t Transaction) IsSkill() bool {
	return strings.Contains(t.Type, SkillTypeFragment)
}

// SkillName returns the skill label without the type tag prefix, or the
// raw type when the tag is absent.
func (t Transaction) SkillName() string {
	if i := strings.Index(t.Type, SkillTypeFragment); i >= 0 {
		return t.Type[i+len(SkillTypeFragment):]
	}
	return t.Type
}
