package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// Request Schema
// ============================================================================

// ProfileInput is the typed create/update payload. It is validated once at
// the boundary before any write happens.
type ProfileInput struct {
	UserID          string          `json:"userId" validate:"required,max=128"`
	Name            string          `json:"name" validate:"required,min=2,max=120,valid_name,no_emoji"`
	Email           string          `json:"email" validate:"required,email,max=254"`
	Summary         string          `json:"summary" validate:"max=2000"`
	Skills          []string        `json:"skills" validate:"max=50,dive,max=64"`
	EducationLevel  EducationLevel  `json:"educationLevel" validate:"omitempty,profile_tag"`
	ExperienceRange ExperienceRange `json:"experienceRange" validate:"omitempty,profile_tag"`
	StudentStatus   StudentStatus   `json:"studentStatus" validate:"omitempty,profile_tag"`
	JobType         JobType         `json:"jobType" validate:"omitempty,profile_tag"`

	// Address is nil when the payload carried no address.
	Address *AddressInput `json:"address"`

	Education      []EducationInput  `json:"education" validate:"dive"`
	Experience     []ExperienceInput `json:"experience" validate:"dive"`
	Achievements   []NamedItem       `json:"achievements" validate:"dive"`
	Certifications []NamedItem       `json:"certifications" validate:"dive"`
}

// Relations returns the child collection part of the payload.
func (p *ProfileInput) Relations() RelationsInput {
	return RelationsInput{
		Education:      p.Education,
		Experience:     p.Experience,
		Achievements:   p.Achievements,
		Certifications: p.Certifications,
	}
}

type AddressInput struct {
	Street     string `json:"street" validate:"max=200"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
	Phone      string `json:"phone" validate:"omitempty,valid_phone"`
}

// IsEmpty reports whether no address field was supplied.
func (a *AddressInput) IsEmpty() bool {
	if a == nil {
		return true
	}
	return *a == (AddressInput{})
}

type EducationInput struct {
	Institution  string `json:"institution" validate:"max=200"`
	Degree       string `json:"degree" validate:"max=120"`
	FieldOfStudy string `json:"fieldOfStudy" validate:"max=120"`
	// GraduationYear is kept raw; it is coerced to a nullable year on sync.
	GraduationYear LooseString `json:"graduationYear"`
	IsCurrent      LooseBool   `json:"isCurrent"`
}

type ExperienceInput struct {
	Company     string    `json:"company" validate:"max=200"`
	Title       string    `json:"title" validate:"max=120"`
	Description string    `json:"description" validate:"max=2000"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	IsCurrent   LooseBool `json:"isCurrent"`
}

// NamedItem is an achievement or certification. It decodes from either a
// bare JSON string or an object with a name and an optional issuing body.
type NamedItem struct {
	Name        string  `json:"name" validate:"max=200"`
	IssuingBody *string `json:"issuingBody,omitempty" validate:"omitempty,max=200"`
}

func (n *NamedItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*n = NamedItem{Name: name}
		return nil
	}

	var obj struct {
		Name        string  `json:"name"`
		IssuingBody *string `json:"issuingBody"`
		Issuer      *string `json:"issuer"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.IssuingBody == nil {
		obj.IssuingBody = obj.Issuer
	}
	*n = NamedItem{Name: obj.Name, IssuingBody: obj.IssuingBody}
	return nil
}

// RelationsInput carries the four child collections of one payload.
type RelationsInput struct {
	Education      []EducationInput
	Experience     []ExperienceInput
	Achievements   []NamedItem
	Certifications []NamedItem
}

// ============================================================================
// Loose JSON scalars
// ============================================================================

// LooseString accepts a JSON string, number or null.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*s = LooseString(n.String())
	}
	return nil
}

// LooseBool accepts a JSON bool, a "true"/"false"/"1"/"0" string or null.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = false
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = LooseBool(ParseLooseBool(v))
		return nil
	}

	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = LooseBool(v)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected boolean, got %s", data)
	}
	*b = n != 0
	return nil
}

// ParseLooseBool treats anything strconv.ParseBool rejects as false.
func ParseLooseBool(v string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && parsed
}
