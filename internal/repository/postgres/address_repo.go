package postgres

import (
	"context"
	"errors"
	"fmt"

	"campus-connect-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type addressRepository struct {
	db DBTX
}

func NewAddressRepository(db DBTX) domain.AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	query := `
		SELECT id, COALESCE(street, ''), COALESCE(city, ''), COALESCE(state, ''),
			COALESCE(postal_code, ''), COALESCE(country, ''), COALESCE(phone, '')
		FROM addresses WHERE id = $1`

	var a domain.Address
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Street, &a.City, &a.State, &a.PostalCode, &a.Country, &a.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) Create(ctx context.Context, a *domain.Address) error {
	query := `
		INSERT INTO addresses (street, city, state, postal_code, country, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return r.db.QueryRow(ctx, query,
		nullIfEmpty(a.Street), nullIfEmpty(a.City), nullIfEmpty(a.State),
		nullIfEmpty(a.PostalCode), nullIfEmpty(a.Country), nullIfEmpty(a.Phone),
	).Scan(&a.ID)
}

func (r *addressRepository) Update(ctx context.Context, a *domain.Address) error {
	query := `
		UPDATE addresses SET street = $2, city = $3, state = $4, postal_code = $5, country = $6, phone = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, a.ID,
		nullIfEmpty(a.Street), nullIfEmpty(a.City), nullIfEmpty(a.State),
		nullIfEmpty(a.PostalCode), nullIfEmpty(a.Country), nullIfEmpty(a.Phone),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("address %d: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	return err
}
