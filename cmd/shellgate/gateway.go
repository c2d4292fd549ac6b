package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core"
	"github.com/Lin-Jiong-HDU/shellgate/internal/core/security"
	"github.com/Lin-Jiong-HDU/shellgate/internal/logger"
	"github.com/Lin-Jiong-HDU/shellgate/internal/storage"
	"github.com/sirupsen/logrus"
)

const dispatchBuffer = 64

// gateway bundles the pieces every transport runs on.
type gateway struct {
	dispatcher *core.Dispatcher
}

func newGate(cfg *storage.Config) *security.Gate {
	authorizer := security.NewAuthorizer(cfg.Security.AllowedUsers)
	if authorizer.Unrestricted() {
		logger.Warn("allow-list-empty-every-user-authorized")
	}
	return security.NewGate(authorizer, security.NewBlacklistStore(nil, &cfg.Security))
}

func newGateway(cfg *storage.Config) (*gateway, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	session := core.NewSession(cwd, cfg.Device.Name, time.Now())
	executor := core.NewExecutor(cfg.Exec.Shell, time.Duration(cfg.Exec.Timeout)*time.Second)
	engine := core.NewEngine(session, newGate(cfg), executor, core.WithTimeout(executor.Timeout()))

	logger.WithFields(logrus.Fields{
		"cwd":              cwd,
		"device":           cfg.Device.Name,
		"commands_file":    cfg.Security.CommandsFile,
		"directories_file": cfg.Security.DirectoriesFile,
		"timeout":          executor.Timeout(),
	}).Info("gateway-ready")

	return &gateway{
		dispatcher: core.NewDispatcher(engine, dispatchBuffer),
	}, nil
}
