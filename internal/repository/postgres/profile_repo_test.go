package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"campus-connect-backend/internal/domain"
	"campus-connect-backend/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textArrayArg matches a Postgres text[] argument by its literal form.
type textArrayArg string

func (a textArrayArg) Match(v any) bool {
	if valuer, ok := v.(driver.Valuer); ok {
		value, err := valuer.Value()
		if err != nil {
			return false
		}
		v = value
	}
	s, ok := v.(string)
	return ok && s == string(a)
}

var profileRowColumns = []string{
	"id", "user_id", "name", "email", "summary", "skills", "resume_path",
	"education_level", "experience_range", "student_status", "job_type",
	"address_id", "created_at", "updated_at",
}

func TestProfileRepository_CreateEncodesSkills(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO student_profiles`).
		WithArgs(
			"u1", "Jane Doe", "jane@example.com", pgxmock.AnyArg(), textArrayArg(`{"go","sql"}`), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	p := &domain.StudentProfile{UserID: "u1", Name: "Jane Doe", Email: "jane@example.com", Skills: []string{"go", "sql"}}
	require.NoError(t, postgres.NewProfileRepository(mock).Create(context.Background(), p))

	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_CreateConflict(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(`INSERT INTO student_profiles`).
		WithArgs(anyArgs(11)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := postgres.NewProfileRepository(mock).Create(context.Background(), &domain.StudentProfile{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProfileRepository_CreateOtherErrorIsNotConflict(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(`INSERT INTO student_profiles`).
		WithArgs(anyArgs(11)...).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := postgres.NewProfileRepository(mock).Create(context.Background(), &domain.StudentProfile{UserID: "u1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestProfileRepository_GetByUserIDDecodesSkills(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now().UTC()
	resumePath := "resumes/cv.pdf"
	addressID := int64(9)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM student_profiles WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(mock.NewRows(profileRowColumns).AddRow(
			int64(1), "u1", "Jane Doe", "jane@example.com", "", `{go,"node js"}`, &resumePath,
			domain.EducationBachelor, domain.ExperienceRange(""), domain.StatusStudying, domain.JobType(""),
			&addressID, now, now,
		))

	p, err := postgres.NewProfileRepository(mock).GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"go", "node js"}, p.Skills)
	assert.Equal(t, domain.EducationBachelor, p.EducationLevel)
	require.NotNil(t, p.AddressID)
	assert.Equal(t, int64(9), *p.AddressID)
}

func TestProfileRepository_GetByUserIDMissing(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM student_profiles WHERE user_id = $1`)).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	p, err := postgres.NewProfileRepository(mock).GetByUserID(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileRepository_UpdateScalarsMissingRow(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(`UPDATE student_profiles SET`).
		WithArgs(anyArgs(11)...).
		WillReturnError(pgx.ErrNoRows)

	err := postgres.NewProfileRepository(mock).UpdateScalars(context.Background(), &domain.StudentProfile{ID: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileRepository_LockByUserID(t *testing.T) {
	mock := newMockPool(t)
	lockQuery := regexp.QuoteMeta(`SELECT id FROM student_profiles WHERE user_id = $1 FOR UPDATE`)
	mock.ExpectQuery(lockQuery).
		WithArgs("u1").
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(lockQuery).
		WithArgs("new-user").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(lockQuery).
		WithArgs("u2").
		WillReturnError(errors.New("lock timeout"))

	repo := postgres.NewProfileRepository(mock)
	ctx := context.Background()

	assert.NoError(t, repo.LockByUserID(ctx, "u1"))
	assert.NoError(t, repo.LockByUserID(ctx, "new-user"), "nothing to lock is not an error")
	assert.ErrorContains(t, repo.LockByUserID(ctx, "u2"), "lock timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationRepositories_CopyColumns(t *testing.T) {
	mock := newMockPool(t)
	year := 2022
	issuer := "CNCF"

	mock.ExpectCopyFrom(pgx.Identifier{"educations"},
		[]string{"profile_id", "institution", "degree", "field_of_study", "graduation_year", "is_current"}).
		WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"certifications"},
		[]string{"profile_id", "name", "issuing_body"}).
		WillReturnResult(1)

	ctx := context.Background()
	require.NoError(t, postgres.NewEducationRepository(mock).BulkInsert(ctx, []domain.Education{
		{ProfileID: 1, Institution: "UGM", GraduationYear: &year},
	}))
	require.NoError(t, postgres.NewCertificationRepository(mock).BulkInsert(ctx, []domain.Certification{
		{ProfileID: 1, Name: "CKA", IssuingBody: &issuer},
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
