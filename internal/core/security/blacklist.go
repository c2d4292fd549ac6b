package security

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Lin-Jiong-HDU/shellgate/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
)

// BlacklistStore loads the blocked-command and blocked-directory lists.
// Nothing is cached: each call reads the backing file again.
type BlacklistStore struct {
	fs             afs.Service
	commandsURL    string
	directoriesURL string
	// warned holds the URLs already reported as unavailable. Later misses
	// log at Debug until the file can be read again.
	warned sync.Map
}

// NewBlacklistStore creates a store reading the files named by policy.
func NewBlacklistStore(fs afs.Service, policy *SecurityPolicy) *BlacklistStore {
	if fs == nil {
		fs = afs.New()
	}
	return &BlacklistStore{
		fs:             fs,
		commandsURL:    policy.CommandsFile,
		directoriesURL: policy.DirectoriesFile,
	}
}

// LoadBlockedCommands returns the blocked-command entries.
func (s *BlacklistStore) LoadBlockedCommands(ctx context.Context) []string {
	return s.load(ctx, s.commandsURL)
}

// LoadBlockedDirectories returns the blocked-directory entries.
func (s *BlacklistStore) LoadBlockedDirectories(ctx context.Context) []string {
	return s.load(ctx, s.directoriesURL)
}

// load never fails: an unset, missing or unreadable list yields no entries.
func (s *BlacklistStore) load(ctx context.Context, URL string) []string {
	if URL == "" {
		return nil
	}

	exists, err := s.fs.Exists(ctx, URL)
	if err != nil || !exists {
		s.unavailable(URL, "blacklist-file-missing", err)
		return nil
	}

	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		s.unavailable(URL, "blacklist-file-unreadable", err)
		return nil
	}

	s.warned.Delete(URL)
	return ParseBlacklist(string(data))
}

func (s *BlacklistStore) unavailable(URL, event string, err error) {
	entry := logger.WithFields(logrus.Fields{
		"file":  URL,
		"error": err,
	})
	if _, seen := s.warned.LoadOrStore(URL, struct{}{}); seen {
		entry.Debug(event)
		return
	}
	entry.Warn(event)
}

// ParseBlacklist splits content into trimmed, non-blank, unique entries.
// Entries are ordered longest first, then lexically, which is the precedence
// used when several entries match the same input.
func ParseBlacklist(content string) []string {
	seen := make(map[string]struct{})
	var entries []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		entries = append(entries, line)
	}

	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i]) != len(entries[j]) {
			return len(entries[i]) > len(entries[j])
		}
		return entries[i] < entries[j]
	})
	return entries
}
