package postgres

import (
	"context"

	"campus-connect-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

// Child collections are replaced wholesale, so each repository only needs
// list, delete-by-profile and a COPY based bulk insert.

// ============================================================================
// Education
// ============================================================================

type educationRepository struct {
	db DBTX
}

func NewEducationRepository(db DBTX) domain.EducationRepository {
	return &educationRepository{db: db}
}

func (r *educationRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Education, error) {
	query := `
		SELECT id, profile_id, institution, COALESCE(degree, ''), COALESCE(field_of_study, ''),
			graduation_year, is_current
		FROM educations WHERE profile_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Education
	for rows.Next() {
		var e domain.Education
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Institution, &e.Degree, &e.FieldOfStudy, &e.GraduationYear, &e.IsCurrent); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *educationRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM educations WHERE profile_id = $1`, profileID)
	return err
}

func (r *educationRepository) BulkInsert(ctx context.Context, rows []domain.Education) error {
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"educations"},
		[]string{"profile_id", "institution", "degree", "field_of_study", "graduation_year", "is_current"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			e := rows[i]
			return []any{e.ProfileID, e.Institution, nullIfEmpty(e.Degree), nullIfEmpty(e.FieldOfStudy), e.GraduationYear, e.IsCurrent}, nil
		}),
	)
	return err
}

// ============================================================================
// Experience
// ============================================================================

type experienceRepository struct {
	db DBTX
}

func NewExperienceRepository(db DBTX) domain.ExperienceRepository {
	return &experienceRepository{db: db}
}

func (r *experienceRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Experience, error) {
	query := `
		SELECT id, profile_id, company, COALESCE(title, ''), COALESCE(description, ''),
			start_date, end_date, is_current
		FROM experiences WHERE profile_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Experience
	for rows.Next() {
		var e domain.Experience
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Company, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.IsCurrent); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *experienceRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM experiences WHERE profile_id = $1`, profileID)
	return err
}

func (r *experienceRepository) BulkInsert(ctx context.Context, rows []domain.Experience) error {
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"experiences"},
		[]string{"profile_id", "company", "title", "description", "start_date", "end_date", "is_current"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			e := rows[i]
			return []any{e.ProfileID, e.Company, nullIfEmpty(e.Title), nullIfEmpty(e.Description), e.StartDate, e.EndDate, e.IsCurrent}, nil
		}),
	)
	return err
}

// ============================================================================
// Achievements
// ============================================================================

type achievementRepository struct {
	db DBTX
}

func NewAchievementRepository(db DBTX) domain.AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Achievement, error) {
	rows, err := r.db.Query(ctx, `SELECT id, profile_id, name FROM achievements WHERE profile_id = $1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.Name); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *achievementRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM achievements WHERE profile_id = $1`, profileID)
	return err
}

func (r *achievementRepository) BulkInsert(ctx context.Context, rows []domain.Achievement) error {
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"achievements"},
		[]string{"profile_id", "name"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{rows[i].ProfileID, rows[i].Name}, nil
		}),
	)
	return err
}

// ============================================================================
// Certifications
// ============================================================================

type certificationRepository struct {
	db DBTX
}

func NewCertificationRepository(db DBTX) domain.CertificationRepository {
	return &certificationRepository{db: db}
}

func (r *certificationRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Certification, error) {
	rows, err := r.db.Query(ctx, `SELECT id, profile_id, name, issuing_body FROM certifications WHERE profile_id = $1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Certification
	for rows.Next() {
		var c domain.Certification
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.Name, &c.IssuingBody); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *certificationRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM certifications WHERE profile_id = $1`, profileID)
	return err
}

func (r *certificationRepository) BulkInsert(ctx context.Context, rows []domain.Certification) error {
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"certifications"},
		[]string{"profile_id", "name", "issuing_body"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{rows[i].ProfileID, rows[i].Name, rows[i].IssuingBody}, nil
		}),
	)
	return err
}
