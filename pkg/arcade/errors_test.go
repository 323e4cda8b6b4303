package arcade

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{
		Code:   ErrorCodeNotFound,
		Title:  "ResourceNotFound",
		Detail: "Job not found",
	}

	assert.Equal(t, "ResourceNotFound: Job not found (code: 1010)", err.Error())
}

func TestResponseErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		response *ResponseError
		want     string
	}{
		{
			name:     "no error entries",
			response: &ResponseError{StatusCode: http.StatusBadGateway},
			want:     "request failed with status 502",
		},
		{
			name: "single entry",
			response: &ResponseError{
				StatusCode: http.StatusNotFound,
				Errors: []APIError{
					{Code: ErrorCodeNotFound, Title: "ResourceNotFound", Detail: "Job not found"},
				},
			},
			want: "ResourceNotFound: Job not found (code: 1010)",
		},
		{
			name: "several entries",
			response: &ResponseError{
				StatusCode: http.StatusUnprocessableEntity,
				Errors: []APIError{
					{Code: ErrorCodeNotFound, Title: "ResourceNotFound", Detail: "Job not found"},
					{Code: ErrorCodeUnprocessable, Title: "UnprocessableEntity", Detail: "Invalid request"},
				},
			},
			want: "multiple errors: [{1010 ResourceNotFound Job not found} {1008 UnprocessableEntity Invalid request}]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.response.Error())
		})
	}
}

func TestResponseErrorFirstError(t *testing.T) {
	response := &ResponseError{
		Errors: []APIError{
			{Code: ErrorCodeNotFound, Title: "ResourceNotFound"},
			{Code: ErrorCodeUnprocessable, Title: "UnprocessableEntity"},
		},
	}

	first := response.FirstError()
	require.NotNil(t, first)
	assert.Equal(t, "ResourceNotFound", first.Title)

	assert.Nil(t, (&ResponseError{}).FirstError())
}

// TestErrorPredicates drives IsNotFound, IsUnauthorized and IsForbidden
// through the same inputs, since each predicate must reject the others'
// matches.
func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFound     bool
		unauthorized bool
		forbidden    bool
	}{
		{
			name:     "bare APIError with not-found code",
			err:      &APIError{Code: ErrorCodeNotFound},
			notFound: true,
		},
		{
			name:         "bare APIError with auth code",
			err:          &APIError{Code: ErrorCodeNotAuthenticated},
			unauthorized: true,
		},
		{
			name:      "response whose first entry is a permission error",
			err:       &ResponseError{Errors: []APIError{{Code: ErrorCodeNotAuthorized}}},
			forbidden: true,
		},
		{
			name: "first entry wins over later entries",
			err: &ResponseError{Errors: []APIError{
				{Code: ErrorCodeNotFound},
				{Code: ErrorCodeNotAuthorized},
			}},
			notFound: true,
		},
		{
			name:     "empty body falls back to the 404 status",
			err:      &ResponseError{StatusCode: http.StatusNotFound},
			notFound: true,
		},
		{
			name:         "empty body falls back to the 401 status",
			err:          &ResponseError{StatusCode: http.StatusUnauthorized},
			unauthorized: true,
		},
		{
			name:      "empty body falls back to the 403 status",
			err:       &ResponseError{StatusCode: http.StatusForbidden},
			forbidden: true,
		},
		{
			name:     "wrapped response error is unwrapped",
			err:      fmt.Errorf("fetching page: %w", &ResponseError{StatusCode: http.StatusNotFound}),
			notFound: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection reset"),
		},
		{
			name: "nil error",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err), "IsNotFound")
			assert.Equal(t, tt.unauthorized, IsUnauthorized(tt.err), "IsUnauthorized")
			assert.Equal(t, tt.forbidden, IsForbidden(tt.err), "IsForbidden")
		})
	}
}

func TestParseResponseError(t *testing.T) {
	t.Run("structured body", func(t *testing.T) {
		body := `{
			"errors": [
				{"code": 1010, "title": "ResourceNotFound", "detail": "Job not found"},
				{"code": 1008, "title": "UnprocessableEntity", "detail": "Invalid request"}
			]
		}`

		errResp, err := ParseResponseError([]byte(body), http.StatusNotFound)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, errResp.StatusCode)
		require.Len(t, errResp.Errors, 2)
		assert.Equal(t, "Job not found", errResp.Errors[0].Detail)
	})

	t.Run("malformed body", func(t *testing.T) {
		errResp, err := ParseResponseError([]byte(`{invalid json}`), http.StatusInternalServerError)
		require.Error(t, err)
		assert.Nil(t, errResp)
	})

	t.Run("empty body keeps the status", func(t *testing.T) {
		errResp, err := ParseResponseError(nil, http.StatusBadGateway)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, errResp.StatusCode)
		assert.Empty(t, errResp.Errors)
	})
}
