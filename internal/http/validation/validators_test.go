package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name  string `json:"displayName" validate:"required,max=5"`
	Email string `json:"identity"    validate:"required,email"`
	Kind  string `json:"kind"        validate:"omitempty,oneof=a b"`
}

func TestStruct_Valid(t *testing.T) {
	require.NoError(t, Struct(signup{Name: "Al", Email: "al@x.com"}))
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(signup{Name: "toolong", Email: "nope", Kind: "c"})
	require.Error(t, err)

	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, Errors{
		{Field: "displayName", Message: "cannot exceed 5 characters"},
		{Field: "identity", Message: "must be a valid email address"},
		{Field: "kind", Message: "must be one of: a b"},
	}, verrs)
	assert.Contains(t, err.Error(), "identity: must be a valid email address")
}

func TestStruct_Required(t *testing.T) {
	err := Struct(signup{})
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "is required", verrs[0].Message)
}
