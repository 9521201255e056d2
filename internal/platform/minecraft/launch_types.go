package minecraft

import (
	"errors"
	"fmt"
)

type LaunchReason string

const (
	ReasonRuntimeMissing      LaunchReason = "runtime_missing"
	ReasonVersionNotInstalled LaunchReason = "version_not_installed"
	ReasonConfigMissing       LaunchReason = "config_missing"
	ReasonCredentialsInvalid  LaunchReason = "credentials_invalid"
)

type LaunchError struct {
	Reason  LaunchReason
	Message string
	Err     error
}

func (e *LaunchError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("launch failed: %s: %v", msg, e.Err)
	}
	return "launch failed: " + msg
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Is matches any LaunchError with the same reason, so the sentinels below
// work with errors.Is.
func (e *LaunchError) Is(target error) bool {
	var t *LaunchError
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrRuntimeMissing      = &LaunchError{Reason: ReasonRuntimeMissing}
	ErrVersionNotInstalled = &LaunchError{Reason: ReasonVersionNotInstalled}
	ErrConfigMissing       = &LaunchError{Reason: ReasonConfigMissing}
	ErrCredentialsInvalid  = &LaunchError{Reason: ReasonCredentialsInvalid}
)

// LaunchResult describes a started game process. Libraries and Assets carry
// the soft failures that did not block the launch.
type LaunchResult struct {
	Success   bool
	LaunchID  string
	VersionID string
	PID       int
	Runtime   string
	Args      []string
	Libraries *SyncResult
	Assets    *SyncResult
	// AssetsError is set when the asset index itself could not be obtained.
	AssetsError error
}

// ProcessSpec is the full invocation of the game process.
type ProcessSpec struct {
	Path string
	Args []string
	Dir  string
}

// Starter spawns the game and relinquishes it. Implementations must not
// wait on the child.
type Starter interface {
	Start(spec ProcessSpec) (pid int, err error)
}

// RuntimeFinder resolves the configured runtime to an executable path.
type RuntimeFinder func(name string) (string, error)
