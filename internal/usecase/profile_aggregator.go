package usecase

import (
	"context"
	"fmt"
	"sort"

	"campus-connect-backend/internal/domain"
)

// ProfileAggregator composes the read view of a profile aggregate. It only
// reads, so it works both on plain and on transaction-bound repositories.
type ProfileAggregator struct{}

func NewProfileAggregator() *ProfileAggregator {
	return &ProfileAggregator{}
}

// Get returns (nil, nil) when the user has no profile.
func (a *ProfileAggregator) Get(ctx context.Context, repos domain.Repositories, userID string) (*domain.StudentProfileAggregate, error) {
	profile, err := repos.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}
	return a.compose(ctx, repos, *profile)
}

// List returns every aggregate. There is no pagination.
func (a *ProfileAggregator) List(ctx context.Context, repos domain.Repositories) ([]domain.StudentProfileAggregate, error) {
	profiles, err := repos.Profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	result := make([]domain.StudentProfileAggregate, 0, len(profiles))
	for _, p := range profiles {
		agg, err := a.compose(ctx, repos, p)
		if err != nil {
			return nil, err
		}
		result = append(result, *agg)
	}
	return result, nil
}

func (a *ProfileAggregator) compose(ctx context.Context, repos domain.Repositories, profile domain.StudentProfile) (*domain.StudentProfileAggregate, error) {
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	agg := &domain.StudentProfileAggregate{StudentProfile: profile}

	if profile.AddressID != nil {
		address, err := repos.Addresses.GetByID(ctx, *profile.AddressID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch address: %w", err)
		}
		agg.Address = address
	}

	education, err := repos.Education.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch education: %w", err)
	}
	SortEducation(education)
	agg.Education = nonNil(education)

	experience, err := repos.Experience.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch experience: %w", err)
	}
	SortExperience(experience)
	agg.Experience = nonNil(experience)

	achievements, err := repos.Achievements.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	agg.Achievements = nonNil(achievements)

	certifications, err := repos.Certifications.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch certifications: %w", err)
	}
	agg.Certifications = nonNil(certifications)

	return agg, nil
}

// SortEducation orders by graduation year, most recent first. Rows without
// a year go last; ties keep insertion (id) order.
func SortEducation(rows []domain.Education) {
	sort.SliceStable(rows, func(i, j int) bool {
		yi, yj := rows[i].GraduationYear, rows[j].GraduationYear
		switch {
		case yi == nil && yj == nil:
			return rows[i].ID < rows[j].ID
		case yi == nil:
			return false
		case yj == nil:
			return true
		case *yi != *yj:
			return *yi > *yj
		}
		return rows[i].ID < rows[j].ID
	})
}

// SortExperience orders by start date, most recent first, undated rows last.
func SortExperience(rows []domain.Experience) {
	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := rows[i].StartDate, rows[j].StartDate
		switch {
		case si == nil && sj == nil:
			return rows[i].ID < rows[j].ID
		case si == nil:
			return false
		case sj == nil:
			return true
		case !si.Equal(*sj):
			return si.After(*sj)
		}
		return rows[i].ID < rows[j].ID
	})
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
