package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// isolate points HOME and the working directory at a fresh temp dir and
// clears the variables the config layer reads.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	chdirForTest(t, tmpDir)
	for _, name := range []string{"TELEGRAM_BOT_TOKEN", "ALLOWED_USERS", "DEVICE_NAME"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return tmpDir
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir failed: %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("Failed to get home dir: %v", err)
	}

	expected := filepath.Join(home, ShellgateDirName)
	if dir != expected {
		t.Errorf("Expected %s, got %s", expected, dir)
	}
}

func TestInitConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if cfg.Exec.Timeout != 60 {
		t.Errorf("Expected timeout 60, got %d", cfg.Exec.Timeout)
	}
	if cfg.Exec.MaxOutput != 4000 {
		t.Errorf("Expected max output 4000, got %d", cfg.Exec.MaxOutput)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
	if len(cfg.Security.AllowedUsers) != 0 {
		t.Errorf("Expected no allowed users, got %v", cfg.Security.AllowedUsers)
	}
	if filepath.Base(cfg.Security.CommandsFile) != "blacklist_cmd.txt" {
		t.Errorf("Unexpected commands file: %s", cfg.Security.CommandsFile)
	}
	if filepath.Base(cfg.Security.DirectoriesFile) != "blacklist_dir.txt" {
		t.Errorf("Unexpected directories file: %s", cfg.Security.DirectoriesFile)
	}

	host, _ := os.Hostname()
	if host != "" && cfg.Device.Name != host {
		t.Errorf("Expected device name %q, got %q", host, cfg.Device.Name)
	}
	if GetConfig() != cfg {
		t.Error("GetConfig should return the loaded config")
	}
}

func TestInitConfig_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ALLOWED_USERS", "42,1001")
	t.Setenv("DEVICE_NAME", "lab-box")
	t.Setenv("SHELLGATE_EXEC_TIMEOUT", "5")
	t.Setenv("SHELLGATE_LOG_LEVEL", "debug")

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Expected token from env, got %q", cfg.Telegram.Token)
	}
	if !reflect.DeepEqual(cfg.Security.AllowedUsers, []string{"42", "1001"}) {
		t.Errorf("Unexpected allowed users: %v", cfg.Security.AllowedUsers)
	}
	if cfg.Device.Name != "lab-box" {
		t.Errorf("Expected device name lab-box, got %q", cfg.Device.Name)
	}
	if cfg.Exec.Timeout != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.Exec.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.Log.Level)
	}
}

func TestLoadConfig_File(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "shellgate.yaml")
	content := `telegram:
  token: from-file
security:
  allowed_users: ["7"]
  commands_file: /etc/shellgate/cmd.txt
exec:
  shell: /bin/bash
  max_output: 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Telegram.Token != "from-file" {
		t.Errorf("Expected token from file, got %q", cfg.Telegram.Token)
	}
	if !reflect.DeepEqual(cfg.Security.AllowedUsers, []string{"7"}) {
		t.Errorf("Unexpected allowed users: %v", cfg.Security.AllowedUsers)
	}
	if cfg.Security.CommandsFile != "/etc/shellgate/cmd.txt" {
		t.Errorf("Unexpected commands file: %s", cfg.Security.CommandsFile)
	}
	if cfg.Exec.Shell != "/bin/bash" || cfg.Exec.MaxOutput != 100 {
		t.Errorf("Unexpected exec config: %+v", cfg.Exec)
	}
	if cfg.Exec.Timeout != 60 {
		t.Errorf("Expected default timeout, got %d", cfg.Exec.Timeout)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	tmpDir := isolate(t)

	if _, err := LoadConfig(filepath.Join(tmpDir, "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("SHELLGATE_EXEC_TIMEOUT", "0")

	if _, err := InitConfig(); err == nil {
		t.Error("Expected validation error for zero timeout")
	}
}

func TestInitConfig_DotEnv(t *testing.T) {
	tmpDir := isolate(t)
	content := "TELEGRAM_BOT_TOKEN=dotenv-token\nDEVICE_NAME=dotenv-box\n"
	if err := os.WriteFile(filepath.Join(tmpDir, DotEnvFileName), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	t.Setenv("DEVICE_NAME", "from-env")

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if cfg.Telegram.Token != "dotenv-token" {
		t.Errorf("Expected token from .env, got %q", cfg.Telegram.Token)
	}
	if cfg.Device.Name != "from-env" {
		t.Errorf(".env must not override environment, got %q", cfg.Device.Name)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("Missing .env should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		exec    ExecConfig
		poll    int
		wantErr bool
	}{
		{"valid", ExecConfig{Timeout: 60, MaxOutput: 4000}, 60, false},
		{"zero timeout", ExecConfig{Timeout: 0, MaxOutput: 4000}, 60, true},
		{"negative output", ExecConfig{Timeout: 60, MaxOutput: -1}, 60, true},
		{"negative poll", ExecConfig{Timeout: 60, MaxOutput: 4000}, -1, true},
		{"zero poll", ExecConfig{Timeout: 60, MaxOutput: 4000}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Exec: tt.exec, Telegram: TelegramConfig{PollTimeout: tt.poll}}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
}
