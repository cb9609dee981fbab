package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "absent uses default", query: "", want: 7},
		{name: "valid value", query: "limit=25", want: 25},
		{name: "zero means uncapped", query: "limit=0", want: 0},
		{name: "non numeric", query: "limit=many", wantErr: true},
		{name: "negative", query: "limit=-1", wantErr: true},
		{name: "over max", query: "limit=101", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/api/products?"+tc.query, nil)
			got, err := ParseQueryLimit(req, "limit", 7, 100)

			if tc.wantErr {
				require.Error(t, err)
				typed := pkgerrors.As(err)
				require.NotNil(t, typed)
				assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", SanitizeString("  hello  ", 10))
	assert.Equal(t, "he", SanitizeString("hello", 2))
	assert.Equal(t, "hello", SanitizeString("hello", 0))
	assert.Equal(t, "", SanitizeString("   ", 10))
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	var dest struct {
		Message string `json:"message" validate:"required"`
	}
	req := httptest.NewRequest("POST", "/api/assistant", strings.NewReader(`{"message":"hi","extra":true}`))

	err := DecodeJSONBody(req, &dest)

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
