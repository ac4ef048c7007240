package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"campus-connect-backend/internal/domain"
	"campus-connect-backend/pkg/apperror"
	"campus-connect-backend/pkg/logger"
	"campus-connect-backend/pkg/metrics"
	"campus-connect-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type studentProfileUsecase struct {
	uow        domain.UnitOfWork
	storage    domain.ResumeStorage
	validate   *validator.Validate
	addresses  *AddressUpserter
	relations  *RelationSynchronizer
	aggregator *ProfileAggregator
}

func NewStudentProfileUsecase(uow domain.UnitOfWork, storage domain.ResumeStorage, validate *validator.Validate) domain.StudentProfileUsecase {
	return &studentProfileUsecase{
		uow:        uow,
		storage:    storage,
		validate:   validate,
		addresses:  NewAddressUpserter(),
		relations:  NewRelationSynchronizer(),
		aggregator: NewProfileAggregator(),
	}
}

// ============================================================================
// Reads
// ============================================================================

func (u *studentProfileUsecase) Get(ctx context.Context, userID string) (*domain.StudentProfileAggregate, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.BadRequest("User ID is required")
	}

	agg, err := u.aggregator.Get(ctx, u.uow.Reader(), userID)
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to load student profile", err)
	}
	return agg, nil
}

func (u *studentProfileUsecase) List(ctx context.Context) ([]domain.StudentProfileAggregate, error) {
	list, err := u.aggregator.List(ctx, u.uow.Reader())
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to list student profiles", err)
	}
	return list, nil
}

// ============================================================================
// Create
// ============================================================================

func (u *studentProfileUsecase) Create(ctx context.Context, input *domain.ProfileInput, resume *domain.ResumeUpload) (agg *domain.StudentProfileAggregate, err error) {
	defer func() { metrics.ObserveProfileSync("create", err) }()

	if err := u.validateInput(input); err != nil {
		return nil, err
	}

	existing, err := u.uow.Reader().Profiles.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to check existing profile", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Student profile already exists for this user", domain.ErrConflict)
	}

	resumePath, err := u.storeResume(ctx, resume)
	if err != nil {
		return nil, err
	}

	err = u.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		addressID, err := u.addresses.Upsert(ctx, repos, nil, input.Address)
		if err != nil {
			return err
		}

		profile := &domain.StudentProfile{UserID: input.UserID, AddressID: addressID, ResumePath: resumePath}
		applyScalars(profile, input)
		if err := repos.Profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		if err := u.relations.Sync(ctx, repos, profile.ID, input.Relations()); err != nil {
			return err
		}

		agg, err = u.aggregator.Get(ctx, repos, input.UserID)
		return err
	})
	if err != nil {
		u.discardResume(ctx, resumePath)
		return nil, writeError("create", input.UserID, err)
	}

	logger.Log.Info("Student profile created", "user_id", input.UserID, "profile_id", agg.ID)
	return agg, nil
}

// ============================================================================
// Update
// ============================================================================

func (u *studentProfileUsecase) Update(ctx context.Context, userID string, input *domain.ProfileInput, resume *domain.ResumeUpload) (agg *domain.StudentProfileAggregate, err error) {
	defer func() { metrics.ObserveProfileSync("update", err) }()

	if input == nil {
		return nil, apperror.BadRequest("Request body is required")
	}
	// The path key wins over whatever the payload claims
	input.UserID = strings.TrimSpace(userID)
	if err := u.validateInput(input); err != nil {
		return nil, err
	}

	existing, err := u.uow.Reader().Profiles.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to load student profile", err)
	}
	if existing == nil {
		return nil, apperror.NotFound("Student profile not found", domain.ErrNotFound)
	}

	newResume, err := u.storeResume(ctx, resume)
	if err != nil {
		return nil, err
	}

	var replacedResume *string
	err = u.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if err := repos.Profiles.LockByUserID(ctx, input.UserID); err != nil {
			return err
		}

		profile, err := repos.Profiles.GetByUserID(ctx, input.UserID)
		if err != nil {
			return fmt.Errorf("failed to reload profile: %w", err)
		}
		if profile == nil {
			// Deleted between the pre-check and the lock
			return domain.ErrNotFound
		}

		addressID, err := u.addresses.Upsert(ctx, repos, profile, input.Address)
		if err != nil {
			return err
		}

		applyScalars(profile, input)
		profile.AddressID = addressID
		if newResume != nil {
			replacedResume = profile.ResumePath
			profile.ResumePath = newResume
		}
		if err := repos.Profiles.UpdateScalars(ctx, profile); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		if err := u.relations.Sync(ctx, repos, profile.ID, input.Relations()); err != nil {
			return err
		}

		agg, err = u.aggregator.Get(ctx, repos, input.UserID)
		return err
	})
	if err != nil {
		u.discardResume(ctx, newResume)
		return nil, writeError("update", input.UserID, err)
	}

	if replacedResume != nil && (newResume == nil || *replacedResume != *newResume) {
		u.discardResume(ctx, replacedResume)
	}

	logger.Log.Info("Student profile updated", "user_id", input.UserID, "profile_id", agg.ID)
	return agg, nil
}

// ============================================================================
// Delete
// ============================================================================

func (u *studentProfileUsecase) Delete(ctx context.Context, userID string) (err error) {
	defer func() { metrics.ObserveProfileSync("delete", err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.BadRequest("User ID is required")
	}

	var resumePath *string
	err = u.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if err := repos.Profiles.LockByUserID(ctx, userID); err != nil {
			return err
		}

		profile, err := repos.Profiles.GetByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if profile == nil {
			return domain.ErrNotFound
		}

		// No cascading FKs: children, then the profile row, then its address
		if err := u.relations.Clear(ctx, repos, profile.ID); err != nil {
			return err
		}
		if err := repos.Profiles.Delete(ctx, profile.ID); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		if profile.AddressID != nil {
			if err := repos.Addresses.Delete(ctx, *profile.AddressID); err != nil {
				return fmt.Errorf("failed to delete address: %w", err)
			}
		}

		resumePath = profile.ResumePath
		return nil
	})
	if err != nil {
		return writeError("delete", userID, err)
	}

	u.discardResume(ctx, resumePath)
	logger.Log.Info("Student profile deleted", "user_id", userID)
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func (u *studentProfileUsecase) validateInput(input *domain.ProfileInput) error {
	if input == nil {
		return apperror.BadRequest("Request body is required")
	}
	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	if err := u.validate.Struct(input); err != nil {
		msg := "Validation failed: " + strings.Join(validation.FormatValidationErrors(err), "; ")
		return apperror.Wrap(http.StatusBadRequest, msg, errors.Join(domain.ErrValidation, err))
	}
	return nil
}

func (u *studentProfileUsecase) storeResume(ctx context.Context, resume *domain.ResumeUpload) (*string, error) {
	if resume == nil || len(resume.Data) == 0 {
		return nil, nil
	}
	path, err := u.storage.Store(ctx, resume.Data, resume.FileName)
	if err != nil {
		logger.Log.Error("Failed to store resume", "file", resume.FileName, "error", err)
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to store resume", err)
	}
	return &path, nil
}

// discardResume is best effort; a failure only leaves an orphan file behind.
func (u *studentProfileUsecase) discardResume(ctx context.Context, path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := u.storage.Delete(ctx, *path); err != nil {
		metrics.ObserveResumeCleanupFailure()
		logger.Log.Warn("Failed to remove resume file", "path", *path, "error", err)
	}
}

func applyScalars(profile *domain.StudentProfile, input *domain.ProfileInput) {
	profile.Name = input.Name
	profile.Email = input.Email
	profile.Summary = strings.TrimSpace(input.Summary)
	profile.Skills = normalizeSkills(input.Skills)
	profile.EducationLevel = input.EducationLevel
	profile.ExperienceRange = input.ExperienceRange
	profile.StudentStatus = input.StudentStatus
	profile.JobType = input.JobType
}

// normalizeSkills trims and drops blanks and case-insensitive duplicates.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	result := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, s)
	}
	return result
}

// writeError maps a failed unit of work onto the client-facing taxonomy.
func writeError(op, userID string, err error) error {
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound("Student profile not found", err)
	case errors.Is(err, domain.ErrConflict):
		return apperror.Conflict("Student profile already exists for this user", err)
	}

	logger.Log.Error("Student profile write rolled back", "op", op, "user_id", userID, "error", err)
	msg := "Failed to save student profile"
	if op == "delete" {
		msg = "Failed to delete student profile"
	}
	return apperror.Wrap(http.StatusInternalServerError, msg, errors.Join(domain.ErrPersistence, err))
}
