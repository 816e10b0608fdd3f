package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOutlawID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bad Name!", "badname"},
		{"DUSTY_RIDER", "dusty_rider"},
		{"six-gun sally", "sixgunsally"},
		{"crow_99", "crow_99"},
		{"¡héllo!", "hllo"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOutlawID(tt.in), "input %q", tt.in)
	}
}

func TestValidateOutlawID(t *testing.T) {
	t.Run("accepts normalized handles", func(t *testing.T) {
		assert.True(t, ValidateOutlawID("badname"))
		assert.True(t, ValidateOutlawID("ab_"))
		assert.True(t, ValidateOutlawID("crow_99"))
		assert.True(t, ValidateOutlawID("aaaaaaaaaaaaaaaaaaaa")) // 20 chars
	})

	t.Run("rejects bad length", func(t *testing.T) {
		assert.False(t, ValidateOutlawID("ab"))
		assert.False(t, ValidateOutlawID(""))
		assert.False(t, ValidateOutlawID("aaaaaaaaaaaaaaaaaaaaa")) // 21 chars
	})

	t.Run("rejects bad charset", func(t *testing.T) {
		assert.False(t, ValidateOutlawID("Bad Name!"))
		assert.False(t, ValidateOutlawID("has-dash"))
		assert.False(t, ValidateOutlawID("UPPER"))
	})
}
