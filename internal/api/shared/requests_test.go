package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Name  string `json:"name"  validate:"required"`
	Count int    `json:"count" validate:"gte=0,lte=5"`
}

type selfValidating struct {
	ok bool
}

var errSelfInvalid = errors.New("self invalid")

func (s *selfValidating) Validate() error {
	if s.ok {
		return nil
	}
	return errSelfInvalid
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel() // Enable parallel execution

	tests := []struct {
		name    string
		body    string
		wantErr error
		want    decodeTarget
	}{
		{name: "valid body", body: `{"name":"deck","count":2}`, want: decodeTarget{Name: "deck", Count: 2}},
		{name: "empty body", body: ``, wantErr: ErrEmptyBody},
		{name: "malformed body", body: `{"name":`, wantErr: ErrMalformedBody},
		{name: "unknown field", body: `{"name":"deck","extra":true}`, wantErr: ErrMalformedBody},
		{name: "wrong type", body: `{"name":"deck","count":"two"}`, wantErr: ErrMalformedBody},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: ErrMalformedBody},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			var got decodeTarget
			err := DecodeJSON(rec, req, &got)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel() // Enable parallel execution

	t.Run("struct tags", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateRequest(&decodeTarget{Name: "deck", Count: 5}))

		err := ValidateRequest(&decodeTarget{Count: 9})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})

	t.Run("validate method wins", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateRequest(&selfValidating{ok: true}))
		assert.ErrorIs(t, ValidateRequest(&selfValidating{}), errSelfInvalid)
	})
}
