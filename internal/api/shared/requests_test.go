package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name        string
		requestBody string
		wantErr     bool
		errContains string
	}{
		{
			name:        "valid json",
			requestBody: `{"name": "test", "age": 30}`,
			wantErr:     false,
		},
		{
			name:        "invalid json",
			requestBody: `{"name": "test", "age": 30,}`, // trailing comma
			wantErr:     true,
			errContains: "invalid character",
		},
		{
			name:        "empty body",
			requestBody: "",
			wantErr:     true,
			errContains: "EOF",
		},
		{
			name:        "trailing value",
			requestBody: `{"name": "a"} {"name": "b"}`,
			wantErr:     true,
			errContains: "single JSON value",
		},
		{
			name:        "oversized body",
			requestBody: `{"name": "` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`,
			wantErr:     true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.requestBody))

			var target payload
			err := DecodeJSON(req, &target)

			if tc.wantErr {
				require.Error(t, err)
				if tc.errContains != "" {
					assert.Contains(t, err.Error(), tc.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload{Name: "test", Age: 30}, target)
		})
	}
}

type selfValidating struct {
	ok bool
}

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Priority *int `validate:"required"`
	}

	t.Run("struct tags", func(t *testing.T) {
		p := 0
		assert.NoError(t, ValidateRequest(&request{Priority: &p}))

		err := ValidateRequest(&request{})
		require.Error(t, err)
		var validationErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &validationErrs)
	})

	t.Run("custom Validate method wins", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
		assert.EqualError(t, ValidateRequest(selfValidating{ok: false}), "not ok")
	})
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    time.Time
		wantErr bool
	}{
		{name: "absent", query: "", want: time.Time{}},
		{name: "empty", query: "?since=", want: time.Time{}},
		{name: "zero", query: "?since=0", want: time.Time{}},
		{name: "negative", query: "?since=-5", want: time.Time{}},
		{name: "seconds", query: "?since=1700000000", want: time.Unix(1_700_000_000, 0)},
		{name: "not a number", query: "?since=abc", wantErr: true},
		{name: "fractional", query: "?since=1.5", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSince(httptest.NewRequest(http.MethodGet, "/completed-tasks"+tc.query, nil))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %v, got %v", tc.want, got)
		})
	}
}
