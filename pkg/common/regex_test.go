package common

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRegexp_Set(t *testing.T) {
	var instance Regexp

	require.NoError(t, instance.Set("^Mic"))
	assert.True(t, instance.HasContent())
	assert.True(t, instance.MatchString("Mic A"))
	assert.False(t, instance.MatchString("Line In"))
	assert.Equal(t, "^Mic", instance.String())

	require.NoError(t, instance.Set(""))
	assert.True(t, instance.IsZero())
	assert.Equal(t, "", instance.String())
}

func TestRegexp_SetIllegal(t *testing.T) {
	var instance Regexp

	assert.EqualError(t, instance.Set("[a-"), "illegal-regexp: [a-")
	assert.True(t, instance.IsZero())
}

func TestRegexp_Text(t *testing.T) {
	var instance Regexp
	require.NoError(t, instance.UnmarshalText([]byte("Monitor of .*")))

	actual, err := instance.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, []byte("Monitor of .*"), actual)
}

func TestKeepFirst(t *testing.T) {
	var target error

	KeepFirst(&target, nil)
	assert.NoError(t, target)

	first := errors.New("first")
	KeepFirst(&target, first)
	KeepFirst(&target, errors.New("second"))
	assert.Equal(t, first, target)
}
