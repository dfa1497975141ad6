package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "neoquiz/pkg/domain-errors"
)

func validDetails(role Role) Details {
	return Details{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Age:          21,
		Organization: "Analytical Society",
		Gender:       GenderFemale,
		Role:         role,
		Password:     "s3cret!",
	}
}

func TestNewDraft(t *testing.T) {
	t.Run("rejects empty email", func(t *testing.T) {
		_, err := NewDraft("  ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewDraft("not-an-email")
		require.Error(t, err)
		assert.Equal(t, "Please enter a valid email address", dErrors.UserMessage(err, ""))
	})

	t.Run("rejects display-name form", func(t *testing.T) {
		_, err := NewDraft("Ada <ada@x.com>")
		require.Error(t, err)
	})

	t.Run("trims and keeps email", func(t *testing.T) {
		d, err := NewDraft(" ada@x.com ")
		require.NoError(t, err)
		assert.Equal(t, "ada@x.com", d.Email)
		assert.False(t, d.HasDetails())
	})
}

func TestDraftWithDetails(t *testing.T) {
	base, err := NewDraft("ada@x.com")
	require.NoError(t, err)

	t.Run("adds every field and leaves the receiver untouched", func(t *testing.T) {
		d, err := base.WithDetails(validDetails(RoleStudent))
		require.NoError(t, err)
		assert.Equal(t, "ada@x.com", d.Email)
		assert.Equal(t, "Ada", d.FirstName)
		assert.Equal(t, 21, d.Age)
		assert.Equal(t, RoleStudent, d.Role)
		assert.False(t, base.HasDetails())
	})

	t.Run("details cannot be replaced once set", func(t *testing.T) {
		d, err := base.WithDetails(validDetails(RoleStudent))
		require.NoError(t, err)
		_, err = d.WithDetails(validDetails(RoleTeacher))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("invalid details are validation errors", func(t *testing.T) {
		det := validDetails(RoleStudent)
		det.Age = 0
		_, err := base.WithDetails(det)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("missing role is rejected", func(t *testing.T) {
		det := validDetails("")
		_, err := base.WithDetails(det)
		require.Error(t, err)
		assert.Equal(t, "Please choose student or teacher", dErrors.UserMessage(err, ""))
	})
}

func TestDraftWithTeacher(t *testing.T) {
	base, _ := NewDraft("s@x.com")
	student, err := base.WithDetails(validDetails(RoleStudent))
	require.NoError(t, err)
	teacher, err := base.WithDetails(validDetails(RoleTeacher))
	require.NoError(t, err)

	t.Run("empty selection is a validation error", func(t *testing.T) {
		_, err := student.WithTeacher("")
		require.Error(t, err)
		assert.Equal(t, "Please select a teacher to continue", dErrors.UserMessage(err, ""))
	})

	t.Run("teachers never carry a teacher id", func(t *testing.T) {
		_, err := teacher.WithTeacher("T123")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("same teacher twice is a no-op", func(t *testing.T) {
		d, err := student.WithTeacher("T123")
		require.NoError(t, err)
		d, err = d.WithTeacher("T123")
		require.NoError(t, err)
		assert.Equal(t, "T123", d.TeacherID)
	})

	t.Run("different teacher is rejected", func(t *testing.T) {
		d, err := student.WithTeacher("T123")
		require.NoError(t, err)
		_, err = d.WithTeacher("T999")
		require.Error(t, err)
	})
}

// TestReadyForProfilePicture_RoleTeacherEquivalence checks that a draft may
// enter ProfilePicture exactly when role == student <=> teacher id present.
func TestReadyForProfilePicture_RoleTeacherEquivalence(t *testing.T) {
	base, _ := NewDraft("p@x.com")
	student, _ := base.WithDetails(validDetails(RoleStudent))
	teacher, _ := base.WithDetails(validDetails(RoleTeacher))
	studentWithTeacher, _ := student.WithTeacher("T1")
	teacherWithTeacher := teacher
	teacherWithTeacher.TeacherID = "T1"

	tests := []struct {
		name  string
		draft RegistrationDraft
		ok    bool
	}{
		{"student with teacher", studentWithTeacher, true},
		{"student without teacher", student, false},
		{"teacher without teacher", teacher, true},
		{"teacher with teacher", teacherWithTeacher, false},
		{"email only", base, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.ReadyForProfilePicture()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeContractViolation))
		})
	}
}

func TestDraftWithAvatar(t *testing.T) {
	d, _ := NewDraft("a@x.com")
	_, err := d.WithAvatar(" ")
	assert.Equal(t, "Please select an avatar", dErrors.UserMessage(err, ""))

	d, err = d.WithAvatar("🧑‍🎓")
	require.NoError(t, err)
	_, err = d.WithAvatar("👩‍🚀")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
