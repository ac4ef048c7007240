package domain

import (
	"context"
	"time"
)

// ============================================================================
// Profile Tags
// ============================================================================

type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationDiploma    EducationLevel = "diploma"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationDoctorate  EducationLevel = "doctorate"
)

// IsValid checks if the education level is one of the known tags
func (l EducationLevel) IsValid() bool {
	switch l {
	case EducationHighSchool, EducationDiploma, EducationBachelor, EducationMaster, EducationDoctorate:
		return true
	}
	return false
}

func (l EducationLevel) Options() []string {
	return tagOptions(EducationHighSchool, EducationDiploma, EducationBachelor, EducationMaster, EducationDoctorate)
}

type ExperienceRange string

const (
	ExperienceNone        ExperienceRange = "none"
	ExperienceUnderOne    ExperienceRange = "0-1"
	ExperienceOneToThree  ExperienceRange = "1-3"
	ExperienceThreeToFive ExperienceRange = "3-5"
	ExperienceOverFive    ExperienceRange = "5+"
)

func (r ExperienceRange) IsValid() bool {
	switch r {
	case ExperienceNone, ExperienceUnderOne, ExperienceOneToThree, ExperienceThreeToFive, ExperienceOverFive:
		return true
	}
	return false
}

func (r ExperienceRange) Options() []string {
	return tagOptions(ExperienceNone, ExperienceUnderOne, ExperienceOneToThree, ExperienceThreeToFive, ExperienceOverFive)
}

type StudentStatus string

const (
	StatusStudying   StudentStatus = "studying"
	StatusGraduated  StudentStatus = "graduated"
	StatusJobSeeking StudentStatus = "job_seeking"
	StatusEmployed   StudentStatus = "employed"
)

func (s StudentStatus) IsValid() bool {
	switch s {
	case StatusStudying, StatusGraduated, StatusJobSeeking, StatusEmployed:
		return true
	}
	return false
}

func (s StudentStatus) Options() []string {
	return tagOptions(StatusStudying, StatusGraduated, StatusJobSeeking, StatusEmployed)
}

type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobInternship JobType = "internship"
	JobContract   JobType = "contract"
	JobRemote     JobType = "remote"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobInternship, JobContract, JobRemote:
		return true
	}
	return false
}

func (t JobType) Options() []string {
	return tagOptions(JobFullTime, JobPartTime, JobInternship, JobContract, JobRemote)
}

// tagOptions lists tag values in declaration order for error messages.
func tagOptions[T ~string](tags ...T) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// ============================================================================
// Aggregate Rows
// ============================================================================

// StudentProfile is the root row of the profile aggregate. One per user.
type StudentProfile struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Summary         string          `json:"summary"`
	Skills          []string        `json:"skills"`
	ResumePath      *string         `json:"resume_path"`
	EducationLevel  EducationLevel  `json:"education_level"`
	ExperienceRange ExperienceRange `json:"experience_range"`
	StudentStatus   StudentStatus   `json:"student_status"`
	JobType         JobType         `json:"job_type"`
	AddressID       *int64          `json:"address_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Address struct {
	ID         int64  `json:"id"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type Education struct {
	ID             int64  `json:"id"`
	ProfileID      int64  `json:"profile_id"`
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	FieldOfStudy   string `json:"field_of_study"`
	GraduationYear *int   `json:"graduation_year"`
	IsCurrent      bool   `json:"is_current"`
}

// Experience.EndDate is always nil when IsCurrent is set.
type Experience struct {
	ID          int64      `json:"id"`
	ProfileID   int64      `json:"profile_id"`
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsCurrent   bool       `json:"is_current"`
}

type Achievement struct {
	ID        int64  `json:"id"`
	ProfileID int64  `json:"profile_id"`
	Name      string `json:"name"`
}

type Certification struct {
	ID          int64   `json:"id"`
	ProfileID   int64   `json:"profile_id"`
	Name        string  `json:"name"`
	IssuingBody *string `json:"issuing_body"`
}

// StudentProfileAggregate is the composed read view returned to callers.
type StudentProfileAggregate struct {
	StudentProfile
	Address        *Address        `json:"address"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Achievements   []Achievement   `json:"achievements"`
	Certifications []Certification `json:"certifications"`
}

// ============================================================================
// Repository Interfaces
// ============================================================================

type ProfileRepository interface {
	// GetByUserID returns (nil, nil) when the user has no profile.
	GetByUserID(ctx context.Context, userID string) (*StudentProfile, error)
	List(ctx context.Context) ([]StudentProfile, error)
	// Create fills ID, CreatedAt and UpdatedAt. Returns ErrConflict on a duplicate user.
	Create(ctx context.Context, profile *StudentProfile) error
	UpdateScalars(ctx context.Context, profile *StudentProfile) error
	Delete(ctx context.Context, id int64) error
	// LockByUserID blocks other writers of the same profile until the
	// surrounding transaction ends. A missing row is not an error.
	LockByUserID(ctx context.Context, userID string) error
}

type AddressRepository interface {
	GetByID(ctx context.Context, id int64) (*Address, error)
	Create(ctx context.Context, address *Address) error
	Update(ctx context.Context, address *Address) error
	Delete(ctx context.Context, id int64) error
}

type EducationRepository interface {
	ListByProfile(ctx context.Context, profileID int64) ([]Education, error)
	DeleteByProfile(ctx context.Context, profileID int64) error
	BulkInsert(ctx context.Context, rows []Education) error
}

type ExperienceRepository interface {
	ListByProfile(ctx context.Context, profileID int64) ([]Experience, error)
	DeleteByProfile(ctx context.Context, profileID int64) error
	BulkInsert(ctx context.Context, rows []Experience) error
}

type AchievementRepository interface {
	ListByProfile(ctx context.Context, profileID int64) ([]Achievement, error)
	DeleteByProfile(ctx context.Context, profileID int64) error
	BulkInsert(ctx context.Context, rows []Achievement) error
}

type CertificationRepository interface {
	ListByProfile(ctx context.Context, profileID int64) ([]Certification, error)
	DeleteByProfile(ctx context.Context, profileID int64) error
	BulkInsert(ctx context.Context, rows []Certification) error
}

// Repositories bundles every repository of the aggregate, bound to one
// connection or transaction.
type Repositories struct {
	Profiles       ProfileRepository
	Addresses      AddressRepository
	Education      EducationRepository
	Experience     ExperienceRepository
	Achievements   AchievementRepository
	Certifications CertificationRepository
}

// UnitOfWork runs fn against transaction-bound repositories. All writes
// made through repos commit together when fn returns nil and are rolled
// back otherwise.
type UnitOfWork interface {
	// Reader returns repositories bound to the plain connection.
	Reader() Repositories
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// ============================================================================
// Resume Storage
// ============================================================================

// ResumeStorage persists uploaded resume files and hands back a relative
// reference path suitable for StudentProfile.ResumePath.
type ResumeStorage interface {
	Store(ctx context.Context, data []byte, originalName string) (string, error)
	// Delete removes a stored file. A missing file is not an error.
	Delete(ctx context.Context, path string) error
}

// ResumeUpload is a validated resume file received at the boundary.
type ResumeUpload struct {
	FileName string
	Data     []byte
}

// ============================================================================
// Usecase Interface
// ============================================================================

type StudentProfileUsecase interface {
	Create(ctx context.Context, input *ProfileInput, resume *ResumeUpload) (*StudentProfileAggregate, error)
	// Get returns (nil, nil) when the user has no profile.
	Get(ctx context.Context, userID string) (*StudentProfileAggregate, error)
	List(ctx context.Context) ([]StudentProfileAggregate, error)
	Update(ctx context.Context, userID string, input *ProfileInput, resume *ResumeUpload) (*StudentProfileAggregate, error)
	Delete(ctx context.Context, userID string) error
}

// ProfileExportUsecase renders every profile as a downloadable sheet.
type ProfileExportUsecase interface {
	// Export returns the file body and a suggested filename. format is
	// "xlsx" (default) or "csv".
	Export(ctx context.Context, format string) ([]byte, string, error)
}
