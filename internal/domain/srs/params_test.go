package srs

import (
	"testing"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	assert.Equal(t, 1.3, params.MinEaseFactor)
	assert.Equal(t, domain.Quality(3), params.PassingQuality)
	assert.Equal(t, 1, params.FirstInterval)
	assert.Equal(t, 6, params.SecondInterval)
	assert.Equal(t, 1, params.LapseInterval)
	assert.NoError(t, params.Validate())
}

func TestNewParams(t *testing.T) {
	t.Parallel() // Enable parallel execution

	tests := []struct {
		name    string
		config  ParamsConfig
		wantErr bool
		check   func(t *testing.T, p *Params)
	}{
		{
			name:   "empty config keeps defaults",
			config: ParamsConfig{},
			check: func(t *testing.T, p *Params) {
				assert.Equal(t, *NewDefaultParams(), *p)
			},
		},
		{
			name:   "overrides are applied",
			config: ParamsConfig{MinEaseFactor: 1.5, FirstInterval: 2, SecondInterval: 5, LapseInterval: 2},
			check: func(t *testing.T, p *Params) {
				assert.Equal(t, 1.5, p.MinEaseFactor)
				assert.Equal(t, 2, p.FirstInterval)
				assert.Equal(t, 5, p.SecondInterval)
				assert.Equal(t, 2, p.LapseInterval)
			},
		},
		{
			name:    "ease floor below 1.3 is rejected",
			config:  ParamsConfig{MinEaseFactor: 1.2},
			wantErr: true,
		},
		{
			name:    "passing quality above 5 is rejected",
			config:  ParamsConfig{PassingQuality: 6},
			wantErr: true,
		},
		{
			name:    "second interval shorter than first is rejected",
			config:  ParamsConfig{FirstInterval: 3, SecondInterval: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := NewParams(tt.config)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
				assert.Nil(t, params)
				return
			}
			require.NoError(t, err)
			tt.check(t, params)
		})
	}
}

func TestParamsValidateLapseInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	params.LapseInterval = 0
	assert.ErrorIs(t, params.Validate(), ErrInvalidParams)
}
