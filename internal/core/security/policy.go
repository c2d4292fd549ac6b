package security

import (
	"os"
	"path/filepath"
)

const (
	CommandsFileName    = "blacklist_cmd.txt"
	DirectoriesFileName = "blacklist_dir.txt"
)

// SecurityPolicy defines where the gate gets its rules from.
type SecurityPolicy struct {
	// AllowedUsers lists the principals allowed to use the gateway.
	// An empty list allows everyone.
	AllowedUsers []string `mapstructure:"allowed_users"`

	// CommandsFile is the path (or afs URL) of the blocked-commands list.
	CommandsFile string `mapstructure:"commands_file"`

	// DirectoriesFile is the path (or afs URL) of the blocked-directories list.
	DirectoriesFile string `mapstructure:"directories_file"`
}

// DefaultPolicy returns an unrestricted policy whose blacklists live next to
// the running executable.
func DefaultPolicy() *SecurityPolicy {
	dir := ExecutableDir()
	return &SecurityPolicy{
		AllowedUsers:    []string{},
		CommandsFile:    filepath.Join(dir, CommandsFileName),
		DirectoriesFile: filepath.Join(dir, DirectoriesFileName),
	}
}

// ExecutableDir returns the directory of the running binary, falling back to
// the working directory.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
