package postgres

import (
	"context"
	"errors"
	"fmt"

	"campus-connect-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

const profileColumns = `
	id, user_id, name, email, COALESCE(summary, ''), skills, resume_path,
	COALESCE(education_level, ''), COALESCE(experience_range, ''),
	COALESCE(student_status, ''), COALESCE(job_type, ''),
	address_id, created_at, updated_at`

type profileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) domain.ProfileRepository {
	return &profileRepository{db: db}
}

func scanProfile(row pgx.Row) (*domain.StudentProfile, error) {
	var p domain.StudentProfile
	var skills []string

	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Email, &p.Summary, pq.Array(&skills), &p.ResumePath,
		&p.EducationLevel, &p.ExperienceRange,
		&p.StudentStatus, &p.JobType,
		&p.AddressID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Skills = skills
	return &p, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.StudentProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM student_profiles WHERE user_id = $1`

	p, err := scanProfile(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]domain.StudentProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM student_profiles ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.StudentProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Create(ctx context.Context, p *domain.StudentProfile) error {
	query := `
		INSERT INTO student_profiles (
			user_id, name, email, summary, skills, resume_path,
			education_level, experience_range, student_status, job_type,
			address_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.UserID, p.Name, p.Email, nullIfEmpty(p.Summary), pq.Array(p.Skills), p.ResumePath,
		nullIfEmpty(string(p.EducationLevel)), nullIfEmpty(string(p.ExperienceRange)),
		nullIfEmpty(string(p.StudentStatus)), nullIfEmpty(string(p.JobType)),
		p.AddressID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile for user %s: %w", p.UserID, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *profileRepository) UpdateScalars(ctx context.Context, p *domain.StudentProfile) error {
	query := `
		UPDATE student_profiles SET
			name = $2, email = $3, summary = $4, skills = $5, resume_path = $6,
			education_level = $7, experience_range = $8, student_status = $9, job_type = $10,
			address_id = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.Name, p.Email, nullIfEmpty(p.Summary), pq.Array(p.Skills), p.ResumePath,
		nullIfEmpty(string(p.EducationLevel)), nullIfEmpty(string(p.ExperienceRange)),
		nullIfEmpty(string(p.StudentStatus)), nullIfEmpty(string(p.JobType)),
		p.AddressID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("profile %d: %w", p.ID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM student_profiles WHERE id = $1`, id)
	return err
}

func (r *profileRepository) LockByUserID(ctx context.Context, userID string) error {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM student_profiles WHERE user_id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to lock profile: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
