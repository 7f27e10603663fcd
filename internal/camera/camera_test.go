package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFacing(t *testing.T) {
	tests := []struct {
		in   string
		want Facing
	}{
		{in: "", want: FacingBack},
		{in: "back", want: FacingBack},
		{in: "environment", want: FacingBack},
		{in: "front", want: FacingFront},
		{in: "user", want: FacingFront},
	}
	for _, tt := range tests {
		got, err := ParseFacing(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFacing("sideways")
	assert.Error(t, err)
}

func TestFacingFlip(t *testing.T) {
	assert.Equal(t, FacingFront, FacingBack.Flip())
	assert.Equal(t, FacingBack, FacingFront.Flip())
}
