package postgres

import (
	"context"
	"fmt"

	"campus-connect-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is a DBTX that can open transactions, such as *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type unitOfWork struct {
	db TxBeginner
}

func NewUnitOfWork(db TxBeginner) domain.UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Reader() domain.Repositories {
	return repositories(u.db)
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, repositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func repositories(db DBTX) domain.Repositories {
	return domain.Repositories{
		Profiles:       NewProfileRepository(db),
		Addresses:      NewAddressRepository(db),
		Education:      NewEducationRepository(db),
		Experience:     NewExperienceRepository(db),
		Achievements:   NewAchievementRepository(db),
		Certifications: NewCertificationRepository(db),
	}
}
