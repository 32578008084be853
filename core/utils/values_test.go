package utils_test

import (
	"testing"

	"modaudit/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestIsNumeric(t *testing.T) {
	assert.True(t, utils.IsNumeric("42"))
	assert.True(t, utils.IsNumeric("-3.5"))
	assert.True(t, utils.IsNumeric("0"))
	assert.False(t, utils.IsNumeric(""))
	assert.False(t, utils.IsNumeric("gunPistol"))
	assert.False(t, utils.IsNumeric("12,10"))
}

func TestLooksLikeIdentifier(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"gunPistol", true},
		{"buffDrunk", true},
		{"ammo9mmBullet", true},
		{"", false},
		{"15", false},
		{"1.5", false},
		{"12,10", false},
		{"a b c", false},
		{"one;two", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.LooksLikeIdentifier(tt.value), "value %q", tt.value)
	}
}

func TestNormalizeValue(t *testing.T) {
	t.Run("ExactByDefault", func(t *testing.T) {
		assert.Equal(t, " 30 ", utils.NormalizeValue(" 30 ", false))
		assert.NotEqual(t, utils.NormalizeValue("Foo", false), utils.NormalizeValue("foo", false))
	})

	t.Run("Folded", func(t *testing.T) {
		assert.Equal(t, "30", utils.NormalizeValue(" 30 ", true))
		assert.Equal(t, utils.NormalizeValue("Foo", true), utils.NormalizeValue("foo", true))
	})
}
