package passes

import (
	"errors"
	"strings"
	"time"
)

// Pass categories.
const (
	TypeMonthly   = "Monthly"
	TypeQuarterly = "Quarterly"
	TypeYearly    = "Yearly"
)

// Holder ID categories.
const (
	IDStudent  = "Student"
	IDEmployee = "Employee"
	IDGeneral  = "General"
)

// Lifecycle states.
const (
	StatusPending = "Pending"
	StatusActive  = "Active"
	StatusExpired = "Expired"
	StatusRevoked = "Revoked"
)

var (
	passTypes = []string{TypeMonthly, TypeQuarterly, TypeYearly}
	idTypes   = []string{IDStudent, IDEmployee, IDGeneral}
	genders   = []string{"Male", "Female", "Other"}
)

var (
	// ErrNotFound is returned when the pass does not exist or belongs to someone else.
	ErrNotFound = errors.New("pass not found")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownOwner is returned when the owning user does not exist.
	ErrUnknownOwner = errors.New("unknown pass owner")
)

// Pass is a transit authorisation with an issue/expiry window.
type Pass struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId,omitempty"`
	Name       string     `json:"name"`
	DOB        *time.Time `json:"dob,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	Address    string     `json:"address,omitempty"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	IDType     string     `json:"idType"`
	IDNumber   string     `json:"idNumber"`
	PassType   string     `json:"passType"`
	IssueDate  time.Time  `json:"issueDate"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	PhotoURL   string     `json:"photoUrl,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CreateInput is the application form submitted by a holder.
type CreateInput struct {
	Name     string `json:"name" validate:"required"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Address  string `json:"address"`
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	IDType   string `json:"idType" validate:"oneof=Student Employee General"`
	IDNumber string `json:"idNumber" validate:"required"`
	PassType string `json:"passType" validate:"oneof=Monthly Quarterly Yearly"`
	PhotoURL string `json:"photoUrl"`
}

// RenewInput selects how far a renewal extends the expiry.
type RenewInput struct {
	ExtendBy string `json:"extendBy" validate:"oneof=Monthly Quarterly Yearly"`
}

// ExpiryFrom returns start advanced by one period of passType using calendar
// arithmetic. Unknown types fall back to Monthly.
func ExpiryFrom(start time.Time, passType string) time.Time {
	switch canonical(passType, passTypes) {
	case TypeQuarterly:
		return start.AddDate(0, 3, 0)
	case TypeYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// EffectiveStatus reports Expired for active passes whose expiry has passed.
func (p Pass) EffectiveStatus(now time.Time) string {
	if p.Status == StatusActive && p.ExpiryDate != nil && p.ExpiryDate.Before(now) {
		return StatusExpired
	}
	return p.Status
}

// canonical maps value case-insensitively onto one of options, returning
// value unchanged when nothing matches.
func canonical(value string, options []string) string {
	for _, opt := range options {
		if strings.EqualFold(value, opt) {
			return opt
		}
	}
	return value
}

func choiceOr(value, fallback string, options []string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return canonical(value, options)
}

func (in *CreateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.DOB = strings.TrimSpace(in.DOB)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.IDNumber = strings.TrimSpace(in.IDNumber)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
	in.IDType = choiceOr(in.IDType, IDStudent, idTypes)
	in.PassType = choiceOr(in.PassType, TypeMonthly, passTypes)
	if g := strings.TrimSpace(in.Gender); g != "" {
		in.Gender = canonical(g, genders)
	} else {
		in.Gender = ""
	}
}

func parseDOB(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			// Keep the calendar day as written; an offset must not move it.
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, errors.New("dob must be a date (YYYY-MM-DD)")
}
