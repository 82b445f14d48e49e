package instance

import (
	"fmt"
	"github.com/gofrs/flock"
	"github.com/shirou/gopsutil/process"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AlreadyRunningError is returned by Acquire if another process holds the
// lock.
type AlreadyRunningError struct {
	File string
	Pid  int32
	Name string
}

func (this *AlreadyRunningError) Error() string {
	switch {
	case this.Pid > 0 && this.Name != "":
		return fmt.Sprintf("another instance is already running (pid %d, %s); lock: %s", this.Pid, this.Name, this.File)
	case this.Pid > 0:
		return fmt.Sprintf("another instance is already running (pid %d); lock: %s", this.Pid, this.File)
	default:
		return fmt.Sprintf("another instance is already running; lock: %s", this.File)
	}
}

// Lock makes sure only one server per user drives the audio devices.
type Lock struct {
	file  string
	flock *flock.Flock
}

func Acquire(file string) (*Lock, error) {
	_ = os.MkdirAll(filepath.Dir(file), 0700)

	fl := flock.New(file)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("cannot acquire lock %q: %w", file, err)
	}
	if !ok {
		return nil, describeOwner(file)
	}

	if err := os.WriteFile(pidFile(file), []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("cannot write pid of lock %q: %w", file, err)
	}

	return &Lock{file: file, flock: fl}, nil
}

func (this *Lock) File() string {
	return this.file
}

func (this *Lock) Release() error {
	if this == nil || this.flock == nil {
		return nil
	}
	_ = os.Remove(pidFile(this.file))
	err := this.flock.Unlock()
	this.flock = nil
	return err
}

func pidFile(file string) string {
	return file + ".pid"
}

func describeOwner(file string) *AlreadyRunningError {
	result := &AlreadyRunningError{File: file}

	b, err := os.ReadFile(pidFile(file))
	if err != nil {
		return result
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 32)
	if err != nil || pid <= 0 {
		return result
	}
	result.Pid = int32(pid)

	if p, err := process.NewProcess(result.Pid); err == nil {
		if name, err := p.Name(); err == nil {
			result.Name = name
		}
	}
	return result
}
