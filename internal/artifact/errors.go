package artifact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorises download failures
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindNotFound ErrorKind = "not_found"
	KindServer   ErrorKind = "server"
	KindDecode   ErrorKind = "decode"
	KindRequest  ErrorKind = "request"
)

// ErrNotFound matches any download error for a missing run or artifact
var ErrNotFound = errors.New("artifact not found")

// DownloadError describes a failed artifact download
type DownloadError struct {
	Kind       ErrorKind
	RunID      string
	Path       string
	StatusCode int
	Message    string
	Cause      error
}

func (e *DownloadError) Error() string {
	parts := []string{fmt.Sprintf("artifact %s/%s", e.RunID, e.Path), string(e.Kind)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrNotFound) match not-found downloads
func (e *DownloadError) Is(target error) bool {
	if target == ErrNotFound {
		return e.Kind == KindNotFound
	}
	if de, ok := target.(*DownloadError); ok {
		return e.Kind == de.Kind
	}
	return false
}

// Retryable reports whether trying again may succeed
func (e *DownloadError) Retryable() bool {
	return e.Kind == KindNetwork || (e.Kind == KindServer && e.StatusCode >= 500)
}
