package instance

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestAcquire(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "audio-router.lock")

	first, err := Acquire(fn)
	require.NoError(t, err)
	assert.Equal(t, fn, first.File())

	b, err := os.ReadFile(fn + ".pid")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(b))

	_, err = Acquire(fn)
	var actual *AlreadyRunningError
	require.ErrorAs(t, err, &actual)
	assert.Equal(t, int32(os.Getpid()), actual.Pid)
	assert.NotEmpty(t, actual.Name)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release())

	second, err := Acquire(fn)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestAlreadyRunningError_Error(t *testing.T) {
	assert.Equal(t, "another instance is already running; lock: x",
		(&AlreadyRunningError{File: "x"}).Error())
	assert.Equal(t, "another instance is already running (pid 42); lock: x",
		(&AlreadyRunningError{File: "x", Pid: 42}).Error())
	assert.Equal(t, "another instance is already running (pid 42, audio-router); lock: x",
		(&AlreadyRunningError{File: "x", Pid: 42, Name: "audio-router"}).Error())
}
