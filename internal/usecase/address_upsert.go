package usecase

import (
	"context"
	"fmt"
	"strings"

	"campus-connect-backend/internal/domain"
)

// AddressUpserter keeps the single address row owned by a profile.
type AddressUpserter struct{}

func NewAddressUpserter() *AddressUpserter {
	return &AddressUpserter{}
}

// Upsert mutates the profile's existing address in place or creates a new
// one, returning the id the caller must link on the profile. profile is nil
// on create. An empty input is a no-op returning the current id.
func (u *AddressUpserter) Upsert(ctx context.Context, repos domain.Repositories, profile *domain.StudentProfile, in *domain.AddressInput) (*int64, error) {
	var currentID *int64
	if profile != nil {
		currentID = profile.AddressID
	}

	if in.IsEmpty() {
		return currentID, nil
	}

	address := domain.Address{
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
		Phone:      strings.TrimSpace(in.Phone),
	}

	if currentID != nil {
		existing, err := repos.Addresses.GetByID(ctx, *currentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load address: %w", err)
		}
		if existing != nil {
			address.ID = existing.ID
			if err := repos.Addresses.Update(ctx, &address); err != nil {
				return nil, fmt.Errorf("failed to update address: %w", err)
			}
			return &address.ID, nil
		}
		// Dangling link: fall through and create a fresh row.
	}

	if err := repos.Addresses.Create(ctx, &address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &address.ID, nil
}
