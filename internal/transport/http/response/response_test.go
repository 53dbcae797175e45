package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-leave/pkg/apperr"
)

func TestNewPaginationRoundsUp(t *testing.T) {
	p := NewPagination(25, 2, 10)
	assert.Equal(t, 3, p.TotalPages)

	assert.Equal(t, 0, NewPagination(0, 1, 10).TotalPages)
	assert.Equal(t, 1, NewPagination(10, 1, 10).TotalPages)
}

func TestErrorEnvelopeOmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Error(CodeNotFound, "User not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"User not found"}`, string(b))

	b, err = json.Marshal(Error(CodeServerError, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Internal server error"}`, string(b))
}

func TestStatusOf(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:      400,
		apperr.KindExpired:         400,
		apperr.KindUnauthenticated: 401,
		apperr.KindForbidden:       403,
		apperr.KindNotFound:        404,
		apperr.KindConflict:        409,
		apperr.KindInternal:        500,
	}
	for k, want := range cases {
		assert.Equal(t, want, StatusOf(k), k.String())
	}
}
