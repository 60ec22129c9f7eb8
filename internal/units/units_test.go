package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		in   string
		want Speed
	}{
		{"mps", MPS},
		{"KPH", KPH},
		{"kmph", KPH},
		{" km/h ", KPH},
		{"mph", MPH},
	}
	for _, tt := range tests {
		got, err := ParseSpeed(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSpeed("knots")
	assert.Error(t, err)
}

func TestSpeed_Convert(t *testing.T) {
	assert.InDelta(t, 90.0, KPH.FromMPS(25), 1e-9)
	assert.InDelta(t, 55.923, MPH.FromMPS(25), 1e-3)
	assert.InDelta(t, 25.0, MPS.FromMPS(25), 1e-9)
	assert.InDelta(t, 25.0, Speed("furlongs").FromMPS(25), 1e-9)

	assert.Equal(t, "90.0 km/h", KPH.Format(25))
	assert.Equal(t, "25.0 m/s", MPS.Format(25))
	assert.Equal(t, "55.9 mph", MPH.Format(25))
}
