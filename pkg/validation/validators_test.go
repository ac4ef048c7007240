package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-connect-backend/internal/domain"
	"campus-connect-backend/pkg/validation"
)

type tagged struct {
	Level   domain.EducationLevel `validate:"omitempty,profile_tag"`
	JobType domain.JobType        `validate:"omitempty,profile_tag"`
}

func TestProfileTag(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(tagged{}))
	assert.NoError(t, v.Struct(tagged{Level: domain.EducationMaster, JobType: domain.JobRemote}))

	err := v.Struct(tagged{JobType: "astronaut"})
	require.Error(t, err)
	msgs := validation.FormatValidationErrors(err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Desired job type: must be one of: full_time, part_time, internship, contract, remote", msgs[0])
}

func TestProfileTag_RejectsNonTagField(t *testing.T) {
	type plain struct {
		Level string `validate:"profile_tag"`
	}
	assert.Error(t, validation.New().Struct(plain{Level: "bachelor"}))
}

func TestValidNameAndPhone(t *testing.T) {
	type contact struct {
		Name  string `validate:"required,valid_name,no_emoji"`
		Phone string `validate:"omitempty,valid_phone"`
	}
	v := validation.New()

	assert.NoError(t, v.Struct(contact{Name: "Anne-Marie O'Neil", Phone: "+6281234567"}))
	assert.Error(t, v.Struct(contact{Name: "=HYPERLINK()"}))
	assert.Error(t, v.Struct(contact{Name: "Jane", Phone: "12-34"}))
	assert.Error(t, v.Struct(contact{Name: "Jane 🎉"}))
}
