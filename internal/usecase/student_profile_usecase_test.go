package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"campus-connect-backend/internal/domain"
	"campus-connect-backend/internal/repository/memory"
	"campus-connect-backend/internal/usecase"
	"campus-connect-backend/pkg/apperror"
	"campus-connect-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeStorage keeps resumes in a map so tests can see what is left behind.
type fakeStorage struct {
	mu    sync.Mutex
	seq   int
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (f *fakeStorage) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	path := fmt.Sprintf("resumes/%d-%s", f.seq, originalName)
	f.files[path] = data
	return path, nil
}

func (f *fakeStorage) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *fakeStorage) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.files))
	for p := range f.files {
		out = append(out, p)
	}
	return out
}

type MockResumeStorage struct {
	mock.Mock
}

func (m *MockResumeStorage) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	args := m.Called(ctx, data, originalName)
	return args.String(0), args.Error(1)
}

func (m *MockResumeStorage) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func setup(t *testing.T) (domain.StudentProfileUsecase, *memory.Store, *fakeStorage) {
	t.Helper()
	store := memory.NewStore()
	files := newFakeStorage()
	return usecase.NewStudentProfileUsecase(store, files, validation.New()), store, files
}

func baseInput(userID string) *domain.ProfileInput {
	return &domain.ProfileInput{
		UserID: userID,
		Name:   "Jane Doe",
		Email:  "jane@example.com",
	}
}

func resume(name string) *domain.ResumeUpload {
	return &domain.ResumeUpload{FileName: name, Data: []byte("%PDF-1.4 test")}
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

func TestCreate_U1Scenario(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	input := baseInput("U1")
	input.Skills = []string{"go", "sql"}
	input.Education = []domain.EducationInput{{Institution: "ITB", GraduationYear: "2022", IsCurrent: false}}

	created, err := uc.Create(ctx, input, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, created.Skills)

	got, err := uc.Get(ctx, "U1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Education, 1)
	require.NotNil(t, got.Education[0].GraduationYear)
	assert.Equal(t, 2022, *got.Education[0].GraduationYear)
	assert.Empty(t, got.Experience)

	update := baseInput("U1")
	update.Skills = []string{"go", "sql"}
	update.Education = []domain.EducationInput{
		{Institution: "UI", GraduationYear: "2024"},
		{Institution: "UGM", GraduationYear: "2023"},
	}
	_, err = uc.Update(ctx, "U1", update, nil)
	require.NoError(t, err)

	got, err = uc.Get(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, got.Education, 2)
	assert.Equal(t, "UI", got.Education[0].Institution)
	assert.Equal(t, "UGM", got.Education[1].Institution)
	for _, e := range got.Education {
		assert.NotEqual(t, "ITB", e.Institution)
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	uc, _, files := setup(t)
	ctx := context.Background()

	issuer := "Google"
	input := baseInput("u-round")
	input.Summary = "  Backend enthusiast  "
	input.Skills = []string{" go ", "Go", "postgres"}
	input.EducationLevel = domain.EducationBachelor
	input.StudentStatus = domain.StatusJobSeeking
	input.Address = &domain.AddressInput{City: "Jakarta", Country: "ID", Phone: "+628123456789"}
	input.Experience = []domain.ExperienceInput{
		{Company: "Old Co", StartDate: "2020-01-01", EndDate: "2021-01-01"},
		{Company: "Now Co", StartDate: "2022-03-01", EndDate: "2023-01-01", IsCurrent: true},
	}
	input.Achievements = []domain.NamedItem{{Name: "Hackathon winner"}, {Name: "  "}}
	input.Certifications = []domain.NamedItem{{Name: "GCP ACE", IssuingBody: &issuer}, {Name: "CKA"}}

	created, err := uc.Create(ctx, input, resume("cv.pdf"))
	require.NoError(t, err)

	assert.Equal(t, "Backend enthusiast", created.Summary)
	assert.Equal(t, []string{"go", "postgres"}, created.Skills)
	require.NotNil(t, created.Address)
	assert.Equal(t, "Jakarta", created.Address.City)
	require.NotNil(t, created.ResumePath)
	assert.Equal(t, []string{*created.ResumePath}, files.paths())

	require.Len(t, created.Experience, 2)
	assert.Equal(t, "Now Co", created.Experience[0].Company)
	assert.True(t, created.Experience[0].IsCurrent)
	assert.Nil(t, created.Experience[0].EndDate)
	require.NotNil(t, created.Experience[1].EndDate)

	require.Len(t, created.Achievements, 1)
	require.Len(t, created.Certifications, 2)
	require.NotNil(t, created.Certifications[0].IssuingBody)
	assert.Equal(t, "Google", *created.Certifications[0].IssuingBody)
	assert.Nil(t, created.Certifications[1].IssuingBody)

	got, err := uc.Get(ctx, "u-round")
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreate_ValidationFailsBeforeAnyWrite(t *testing.T) {
	uc, store, files := setup(t)

	input := baseInput("u1")
	input.Email = "not-an-email"
	input.Address = &domain.AddressInput{Phone: "abc"}

	_, err := uc.Create(context.Background(), input, resume("cv.pdf"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "invalid email format")
	assert.Contains(t, err.Error(), "invalid phone number")

	assert.Empty(t, files.paths())
	for table, n := range store.RowCounts() {
		assert.Zero(t, n, table)
	}
}

func TestCreate_InvalidTag(t *testing.T) {
	uc, _, _ := setup(t)

	input := baseInput("u1")
	input.JobType = "astronaut"

	_, err := uc.Create(context.Background(), input, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Desired job type: must be one of: full_time, part_time, internship, contract, remote")
}

func TestCreate_BlankSkillsAreDropped(t *testing.T) {
	uc, _, _ := setup(t)

	input := baseInput("u1")
	input.Skills = []string{"go", "", " sql ", "  "}

	created, err := uc.Create(context.Background(), input, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, created.Skills)
}

func TestCreate_Conflict(t *testing.T) {
	uc, _, files := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, baseInput("dup"), nil)
	require.NoError(t, err)

	_, err = uc.Create(ctx, baseInput("dup"), resume("cv.pdf"))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appCode(t, err))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, files.paths())
}

func TestCreate_RollbackRemovesResume(t *testing.T) {
	uc, store, files := setup(t)
	store.FailOn("experience.insert", errors.New("connection reset"))

	input := baseInput("u-fail")
	input.Address = &domain.AddressInput{City: "Bandung"}
	input.Education = []domain.EducationInput{{Institution: "ITB"}}
	input.Experience = []domain.ExperienceInput{{Company: "Acme"}}

	_, err := uc.Create(context.Background(), input, resume("cv.pdf"))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appCode(t, err))
	assert.ErrorIs(t, err, domain.ErrPersistence)

	for table, n := range store.RowCounts() {
		assert.Zero(t, n, table)
	}
	assert.Empty(t, files.paths())
}

func TestCreate_StorageFailure(t *testing.T) {
	store := memory.NewStore()
	files := new(MockResumeStorage)
	uc := usecase.NewStudentProfileUsecase(store, files, validation.New())

	files.On("Store", mock.Anything, mock.Anything, "cv.pdf").Return("", errors.Join(domain.ErrStorage, errors.New("disk full")))

	_, err := uc.Create(context.Background(), baseInput("u1"), resume("cv.pdf"))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appCode(t, err))
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 0, store.RowCounts()["student_profiles"])
	files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdate_ReplacesEveryRelation(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()

	input := baseInput("u1")
	input.Education = []domain.EducationInput{{Institution: "A"}, {Institution: "B"}}
	input.Experience = []domain.ExperienceInput{{Company: "X"}}
	input.Achievements = []domain.NamedItem{{Name: "one"}}
	input.Certifications = []domain.NamedItem{{Name: "cert"}}
	_, err := uc.Create(ctx, input, nil)
	require.NoError(t, err)

	update := baseInput("u1")
	update.Education = []domain.EducationInput{{Institution: "C"}}
	got, err := uc.Update(ctx, "u1", update, nil)
	require.NoError(t, err)

	require.Len(t, got.Education, 1)
	assert.Equal(t, "C", got.Education[0].Institution)
	assert.Empty(t, got.Experience)
	assert.Empty(t, got.Achievements)
	assert.Empty(t, got.Certifications)

	counts := store.RowCounts()
	assert.Equal(t, 1, counts["educations"])
	assert.Zero(t, counts["experiences"])
	assert.Zero(t, counts["achievements"])
	assert.Zero(t, counts["certifications"])
}

func TestUpdate_AddressIDIsStable(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()

	input := baseInput("u1")
	input.Address = &domain.AddressInput{City: "Bandung"}
	created, err := uc.Create(ctx, input, nil)
	require.NoError(t, err)
	require.NotNil(t, created.AddressID)

	update := baseInput("u1")
	update.Address = &domain.AddressInput{City: "Surabaya", Street: "Jl. Darmo 1"}
	got, err := uc.Update(ctx, "u1", update, nil)
	require.NoError(t, err)

	require.NotNil(t, got.AddressID)
	assert.Equal(t, *created.AddressID, *got.AddressID)
	assert.Equal(t, "Surabaya", got.Address.City)
	assert.Equal(t, 1, store.RowCounts()["addresses"])

	// No address in the payload leaves the stored one alone
	got, err = uc.Update(ctx, "u1", baseInput("u1"), nil)
	require.NoError(t, err)
	require.NotNil(t, got.Address)
	assert.Equal(t, "Surabaya", got.Address.City)
}

func TestUpdate_CreatesAddressWhenMissing(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, baseInput("u1"), nil)
	require.NoError(t, err)
	assert.Nil(t, created.AddressID)
	assert.Nil(t, created.Address)

	update := baseInput("u1")
	update.Address = &domain.AddressInput{Country: "ID"}
	got, err := uc.Update(ctx, "u1", update, nil)
	require.NoError(t, err)
	require.NotNil(t, got.Address)
	assert.Equal(t, "ID", got.Address.Country)
}

func TestUpdate_PathUserIDWins(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, baseInput("u1"), nil)
	require.NoError(t, err)

	update := baseInput("someone-else")
	update.Name = "Renamed"
	got, err := uc.Update(ctx, "u1", update, nil)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Renamed", got.Name)

	other, err := uc.Get(ctx, "someone-else")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestUpdate_NotFound(t *testing.T) {
	uc, _, files := setup(t)

	_, err := uc.Update(context.Background(), "ghost", baseInput("ghost"), resume("cv.pdf"))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, files.paths())
}

func TestUpdate_ResumeReplacement(t *testing.T) {
	uc, _, files := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, baseInput("u1"), resume("old.pdf"))
	require.NoError(t, err)
	oldPath := *created.ResumePath

	// No new file keeps the old reference
	got, err := uc.Update(ctx, "u1", baseInput("u1"), nil)
	require.NoError(t, err)
	require.NotNil(t, got.ResumePath)
	assert.Equal(t, oldPath, *got.ResumePath)
	assert.Equal(t, []string{oldPath}, files.paths())

	// A new file replaces and deletes the old one
	got, err = uc.Update(ctx, "u1", baseInput("u1"), resume("new.pdf"))
	require.NoError(t, err)
	require.NotNil(t, got.ResumePath)
	assert.NotEqual(t, oldPath, *got.ResumePath)
	assert.Equal(t, []string{*got.ResumePath}, files.paths())
}

func TestUpdate_RollbackKeepsPreviousState(t *testing.T) {
	uc, store, files := setup(t)
	ctx := context.Background()

	input := baseInput("u1")
	input.Education = []domain.EducationInput{{Institution: "Original"}}
	created, err := uc.Create(ctx, input, resume("old.pdf"))
	require.NoError(t, err)

	store.FailOn("certification.insert", errors.New("deadlock detected"))

	update := baseInput("u1")
	update.Name = "Changed Name"
	update.Education = []domain.EducationInput{{Institution: "New"}}
	update.Certifications = []domain.NamedItem{{Name: "cert"}}
	_, err = uc.Update(ctx, "u1", update, resume("new.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	got, err := uc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	require.Len(t, got.Education, 1)
	assert.Equal(t, "Original", got.Education[0].Institution)
	assert.Equal(t, created.ResumePath, got.ResumePath)
	assert.Equal(t, []string{*created.ResumePath}, files.paths())
}

func TestDelete_RemovesWholeAggregate(t *testing.T) {
	uc, store, files := setup(t)
	ctx := context.Background()

	input := baseInput("u1")
	input.Address = &domain.AddressInput{City: "Medan"}
	input.Education = []domain.EducationInput{{Institution: "USU"}}
	input.Experience = []domain.ExperienceInput{{Company: "Acme"}}
	input.Achievements = []domain.NamedItem{{Name: "a"}}
	input.Certifications = []domain.NamedItem{{Name: "c"}}
	_, err := uc.Create(ctx, input, resume("cv.pdf"))
	require.NoError(t, err)

	// A second profile must survive
	_, err = uc.Create(ctx, baseInput("u2"), nil)
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, "u1"))

	got, err := uc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	counts := store.RowCounts()
	assert.Equal(t, 1, counts["student_profiles"])
	assert.Zero(t, counts["addresses"])
	assert.Zero(t, counts["educations"])
	assert.Zero(t, counts["experiences"])
	assert.Zero(t, counts["achievements"])
	assert.Zero(t, counts["certifications"])
	assert.Empty(t, files.paths())
}

func TestDelete_NotFound(t *testing.T) {
	uc, _, _ := setup(t)

	err := uc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))
}

func TestDelete_RollbackKeepsAggregate(t *testing.T) {
	uc, store, files := setup(t)
	ctx := context.Background()

	input := baseInput("u1")
	input.Address = &domain.AddressInput{City: "Medan"}
	input.Education = []domain.EducationInput{{Institution: "USU"}}
	_, err := uc.Create(ctx, input, resume("cv.pdf"))
	require.NoError(t, err)
	before := store.RowCounts()
	resumes := files.paths()
	require.Len(t, resumes, 1)

	store.FailOn("address.delete", errors.New("fk violation"))

	err = uc.Delete(ctx, "u1")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appCode(t, err))
	assert.Equal(t, "Failed to delete student profile", err.Error())
	assert.ErrorIs(t, err, domain.ErrPersistence)

	assert.Equal(t, before, store.RowCounts())
	assert.Equal(t, resumes, files.paths())

	got, err := uc.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Education, 1)
}

func TestGet_NotFoundIsNotAnError(t *testing.T) {
	uc, _, _ := setup(t)

	got, err := uc.Get(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = uc.Get(context.Background(), "  ")
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
}

func TestList(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	for _, id := range []string{"a", "b", "c"} {
		_, err := uc.Create(ctx, baseInput(id), nil)
		require.NoError(t, err)
	}

	list, err = uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].UserID)
	assert.Equal(t, "c", list[2].UserID)
	for _, p := range list {
		assert.NotNil(t, p.Skills)
		assert.NotNil(t, p.Education)
	}
}

func TestConcurrentUpdates_LeaveOneConsistentSet(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, baseInput("u1"), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			update := baseInput("u1")
			for j := 0; j <= n; j++ {
				update.Education = append(update.Education, domain.EducationInput{Institution: fmt.Sprintf("school-%d", n)})
			}
			_, err := uc.Update(ctx, "u1", update, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := uc.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, got.Education)

	// Every row comes from the same writer
	first := got.Education[0].Institution
	for _, e := range got.Education {
		assert.Equal(t, first, e.Institution)
	}
	assert.Equal(t, len(got.Education), store.RowCounts()["educations"])
}
