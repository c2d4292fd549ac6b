package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core/paths"
)

// Session holds the mutable state shared by every request: the working
// directory, bookmarks, device label and start time. All methods are safe for
// concurrent use.
type Session struct {
	mu          sync.RWMutex
	workingDir  string
	bookmarks   []string
	deviceLabel string
	startedAt   time.Time
}

// NewSession creates a session rooted at workingDir.
func NewSession(workingDir, deviceLabel string, startedAt time.Time) *Session {
	return &Session{
		workingDir:  paths.Normalize(workingDir),
		bookmarks:   []string{},
		deviceLabel: deviceLabel,
		startedAt:   startedAt,
	}
}

// WorkingDir returns the current working directory.
func (s *Session) WorkingDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingDir
}

// ChangeDirectory resolves raw against the working directory and switches to
// it. A blocked target fails with ErrAccessDenied and a missing one with
// ErrNotFound; in both cases the working directory is left unchanged. The
// resolved target is returned either way.
func (s *Session) ChangeDirectory(raw string, blocked func(string) bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.switchTo(paths.Resolve(raw, s.workingDir), blocked)
}

// JumpTo switches to an already-resolved target, such as a stored bookmark.
// The path is used as given apart from cleaning; no expansion is applied and
// a relative target is joined onto the working directory. Errors follow
// ChangeDirectory.
func (s *Session) JumpTo(target string, blocked func(string) bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !filepath.IsAbs(target) {
		target = filepath.Join(s.workingDir, target)
	}
	return s.switchTo(filepath.Clean(target), blocked)
}

// switchTo must be called with mu held.
func (s *Session) switchTo(target string, blocked func(string) bool) (string, error) {
	if blocked != nil && blocked(target) {
		return target, fmt.Errorf("%w: %s", ErrAccessDenied, target)
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return target, fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	s.workingDir = target
	return target, nil
}

// Bookmarks returns a copy of the bookmark list in insertion order.
func (s *Session) Bookmarks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, len(s.bookmarks))
	copy(result, s.bookmarks)
	return result
}

// AddBookmark appends path unless it is already present. It reports whether
// the list changed.
func (s *Session) AddBookmark(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookmarks {
		if b == path {
			return false
		}
	}
	s.bookmarks = append(s.bookmarks, path)
	return true
}

// RemoveBookmark deletes path if present. It reports whether the list changed.
func (s *Session) RemoveBookmark(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.bookmarks {
		if b == path {
			s.bookmarks = append(s.bookmarks[:i], s.bookmarks[i+1:]...)
			return true
		}
	}
	return false
}

// DeviceLabel returns the display name of this host.
func (s *Session) DeviceLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceLabel
}

// SetDeviceLabel overwrites the display name.
func (s *Session) SetDeviceLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceLabel = label
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}
