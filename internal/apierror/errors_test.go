package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingIDsError_MatchesNotFound(t *testing.T) {
	err := fmt.Errorf("formula update: %w", &MissingIDsError{Entity: "elements", IDs: []string{"e9"}})

	assert.True(t, IsNotFound(err))
	assert.False(t, IsAlreadyExists(err))

	var missing *MissingIDsError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"e9"}, missing.IDs)
	assert.Contains(t, err.Error(), "idList=[e9]")
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("element not found, id=%s", "x"), http.StatusNotFound},
		{AlreadyExists("element already exists, name=%s", "FLOUR"), http.StatusBadRequest},
		{BeingUsed("element is being used"), http.StatusBadRequest},
		{Invalid("bad id"), http.StatusUnprocessableEntity},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestResponse_HidesInternalErrors(t *testing.T) {
	status, body := Response(errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Detail)

	status, body = Response(NotFound("product not found, id=%s", "p1"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "product not found, id=p1", body.Detail)
}
