package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"campus-connect-backend/internal/domain"
)

// RelationSynchronizer replaces the four child collections of a profile.
// Each relation is a full replace: every existing row is deleted, then the
// incoming rows are inserted. An empty payload leaves the relation empty.
type RelationSynchronizer struct{}

func NewRelationSynchronizer() *RelationSynchronizer {
	return &RelationSynchronizer{}
}

// Sync must run inside a unit of work so the four replacements commit together.
func (s *RelationSynchronizer) Sync(ctx context.Context, repos domain.Repositories, profileID int64, in domain.RelationsInput) error {
	// 1. Education
	if err := repos.Education.DeleteByProfile(ctx, profileID); err != nil {
		return fmt.Errorf("failed to delete education: %w", err)
	}
	if rows := NormalizeEducation(profileID, in.Education); len(rows) > 0 {
		if err := repos.Education.BulkInsert(ctx, rows); err != nil {
			return fmt.Errorf("failed to insert education: %w", err)
		}
	}

	// 2. Experience
	if err := repos.Experience.DeleteByProfile(ctx, profileID); err != nil {
		return fmt.Errorf("failed to delete experience: %w", err)
	}
	if rows := NormalizeExperience(profileID, in.Experience); len(rows) > 0 {
		if err := repos.Experience.BulkInsert(ctx, rows); err != nil {
			return fmt.Errorf("failed to insert experience: %w", err)
		}
	}

	// 3. Achievements
	if err := repos.Achievements.DeleteByProfile(ctx, profileID); err != nil {
		return fmt.Errorf("failed to delete achievements: %w", err)
	}
	if rows := NormalizeAchievements(profileID, in.Achievements); len(rows) > 0 {
		if err := repos.Achievements.BulkInsert(ctx, rows); err != nil {
			return fmt.Errorf("failed to insert achievements: %w", err)
		}
	}

	// 4. Certifications
	if err := repos.Certifications.DeleteByProfile(ctx, profileID); err != nil {
		return fmt.Errorf("failed to delete certifications: %w", err)
	}
	if rows := NormalizeCertifications(profileID, in.Certifications); len(rows) > 0 {
		if err := repos.Certifications.BulkInsert(ctx, rows); err != nil {
			return fmt.Errorf("failed to insert certifications: %w", err)
		}
	}

	return nil
}

// Clear removes every child row of the profile. Used before deleting it.
func (s *RelationSynchronizer) Clear(ctx context.Context, repos domain.Repositories, profileID int64) error {
	return s.Sync(ctx, repos, profileID, domain.RelationsInput{})
}

// ============================================================================
// Coercion
// ============================================================================

// graduationYearPattern allows a float-encoded year ("2022.0") but not
// exponents, signs or fractions.
var graduationYearPattern = regexp.MustCompile(`^([0-9]{1,4})(\.0+)?$`)

// ParseGraduationYear returns nil for an empty, non-numeric or non-positive
// year.
func ParseGraduationYear(raw string) *int {
	m := graduationYearPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

// ParseISODate accepts YYYY-MM-DD or RFC3339 and returns nil otherwise.
func ParseISODate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

func NormalizeEducation(profileID int64, items []domain.EducationInput) []domain.Education {
	rows := make([]domain.Education, 0, len(items))
	for _, item := range items {
		rows = append(rows, domain.Education{
			ProfileID:      profileID,
			Institution:    strings.TrimSpace(item.Institution),
			Degree:         strings.TrimSpace(item.Degree),
			FieldOfStudy:   strings.TrimSpace(item.FieldOfStudy),
			GraduationYear: ParseGraduationYear(string(item.GraduationYear)),
			IsCurrent:      bool(item.IsCurrent),
		})
	}
	return rows
}

func NormalizeExperience(profileID int64, items []domain.ExperienceInput) []domain.Experience {
	rows := make([]domain.Experience, 0, len(items))
	for _, item := range items {
		row := domain.Experience{
			ProfileID:   profileID,
			Company:     strings.TrimSpace(item.Company),
			Title:       strings.TrimSpace(item.Title),
			Description: item.Description,
			StartDate:   ParseISODate(item.StartDate),
			EndDate:     ParseISODate(item.EndDate),
			IsCurrent:   bool(item.IsCurrent),
		}
		if row.IsCurrent {
			row.EndDate = nil
		}
		rows = append(rows, row)
	}
	return rows
}

func NormalizeAchievements(profileID int64, items []domain.NamedItem) []domain.Achievement {
	rows := make([]domain.Achievement, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		rows = append(rows, domain.Achievement{ProfileID: profileID, Name: name})
	}
	return rows
}

func NormalizeCertifications(profileID int64, items []domain.NamedItem) []domain.Certification {
	rows := make([]domain.Certification, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		var issuer *string
		if item.IssuingBody != nil {
			if v := strings.TrimSpace(*item.IssuingBody); v != "" {
				issuer = &v
			}
		}
		rows = append(rows, domain.Certification{ProfileID: profileID, Name: name, IssuingBody: issuer})
	}
	return rows
}
