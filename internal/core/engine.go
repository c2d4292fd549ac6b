package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core/security"
	"github.com/Lin-Jiong-HDU/shellgate/internal/logger"
	"github.com/sirupsen/logrus"
)

const helpText = "Shell Bot Commands:\n\n" +
	"/start - Start session\n" +
	"/help - Show this help\n" +
	"/cd <path> - Change directory\n" +
	"/home - Go to home directory\n" +
	"/pwd - Show current directory\n" +
	"/status - Show server status\n" +
	"/device - View/set device name\n" +
	"/bookmark - Show bookmarks\n\n" +
	"Any other text runs as shell command."

// Engine turns events into replies. It owns no transport: adapters deliver
// events and render the replies however they like.
type Engine struct {
	session  *Session
	gate     *security.Gate
	runner   Runner
	timeout  time.Duration
	now      func() time.Time
	hostname func() string
	lookupIP func(host string) string
	homeDir  func() (string, error)
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for uptime.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeout sets the limit reported when a command times out. It should
// match the runner's own limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithHostLookup overrides host name and IP resolution.
func WithHostLookup(hostname func() string, lookupIP func(string) string) Option {
	return func(e *Engine) {
		e.hostname = hostname
		e.lookupIP = lookupIP
	}
}

// WithHomeDir overrides home directory lookup.
func WithHomeDir(homeDir func() (string, error)) Option {
	return func(e *Engine) { e.homeDir = homeDir }
}

// NewEngine creates a new engine
func NewEngine(session *Session, gate *security.Gate, runner Runner, opts ...Option) *Engine {
	e := &Engine{
		session:  session,
		gate:     gate,
		runner:   runner,
		timeout:  DefaultTimeout,
		now:      time.Now,
		hostname: Hostname,
		lookupIP: LookupIP,
		homeDir:  os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session returns the session the engine operates on.
func (e *Engine) Session() *Session {
	return e.session
}

// Handle processes one event. Every kind is gated on the principal first; an
// unauthorized event never touches the session.
func (e *Engine) Handle(ctx context.Context, ev Event) Reply {
	log := eventLogger(ev)

	if !e.gate.IsAuthorized(ev.Principal) {
		log.Warn("unauthorized-access-attempt")
		return Reply{Text: "Unauthorized.", Err: ErrUnauthorized, Edit: ev.Kind == KindButtonPress}
	}
	log.Debug("event-received")

	switch ev.Kind {
	case KindStart:
		return Reply{Text: fmt.Sprintf("Shell session started.\nCWD: %s\nSend any command to execute.\nUse /cd <path> to change directory.",
			e.session.WorkingDir())}
	case KindHelp:
		return Reply{Text: helpText}
	case KindChangeDir:
		return e.changeDir(ctx, log, ev.Args)
	case KindHome:
		return e.goHome(ctx, log)
	case KindPwd:
		cwd := e.session.WorkingDir()
		return Reply{Text: "📁 " + cwd, Actions: OfferBookmark(cwd)}
	case KindStatus:
		return Reply{Text: e.Status().String()}
	case KindDevice:
		return e.device(log, ev.Args)
	case KindListBookmarks:
		return e.listBookmarks()
	case KindButtonPress:
		return e.buttonPress(ctx, log, ev.Args)
	case KindRawCommand:
		return e.prepareCommand(ctx, log, ev)()
	}

	log.Warn("unknown-event-kind")
	return Reply{Text: fmt.Sprintf("Unknown request: %s", ev.Kind)}
}

// Prepare does the part of handling ev that must happen in arrival order and
// returns a func that finishes it. For a shell command the gate check and the
// working directory snapshot happen here and the returned func runs the
// command, so it can be called from another goroutine. For every other event
// the reply is already computed.
func (e *Engine) Prepare(ctx context.Context, ev Event) func() Reply {
	if ev.Kind != KindRawCommand || !e.gate.IsAuthorized(ev.Principal) {
		return ready(e.Handle(ctx, ev))
	}
	return e.prepareCommand(ctx, eventLogger(ev), ev)
}

func eventLogger(ev Event) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"request_id": ev.ID,
		"principal":  ev.Principal,
		"kind":       ev.Kind,
	})
}

// Status reports the current host and session state.
func (e *Engine) Status() Status {
	host := e.hostname()
	return Status{
		DeviceLabel: e.session.DeviceLabel(),
		IP:          e.lookupIP(host),
		Hostname:    host,
		WorkingDir:  e.session.WorkingDir(),
		Uptime:      e.now().Sub(e.session.StartedAt()),
		StartedAt:   e.session.StartedAt(),
	}
}

func (e *Engine) isBlocked(ctx context.Context) func(string) bool {
	return func(path string) bool {
		return e.gate.IsDirectoryBlocked(ctx, path)
	}
}

func (e *Engine) changeDir(ctx context.Context, log *logrus.Entry, args string) Reply {
	if strings.TrimSpace(args) == "" {
		return Reply{Text: "Current directory: " + e.session.WorkingDir()}
	}

	target, err := e.session.ChangeDirectory(args, e.isBlocked(ctx))
	if err != nil {
		log.WithFields(logrus.Fields{"target": target, "error": err}).Info("change-directory-rejected")
		return directoryErrorReply(target, err)
	}

	log.WithField("cwd", target).Info("working-directory-changed")
	return Reply{Text: "📁 Changed to: " + target, Actions: OfferBookmark(target)}
}

// goHome applies the directory blacklist to the home directory like any
// other target.
func (e *Engine) goHome(ctx context.Context, log *logrus.Entry) Reply {
	home, err := e.homeDir()
	if err != nil {
		return Reply{Text: fmt.Sprintf("Error: %v", err), Err: fmt.Errorf("%w: home directory: %v", ErrNotFound, err)}
	}

	target, err := e.session.JumpTo(home, e.isBlocked(ctx))
	if err != nil {
		log.WithFields(logrus.Fields{"target": target, "error": err}).Info("change-directory-rejected")
		return directoryErrorReply(target, err)
	}

	log.WithField("cwd", target).Info("working-directory-changed")
	return Reply{Text: "Changed to: " + target}
}

func directoryErrorReply(target string, err error) Reply {
	if errors.Is(err, ErrAccessDenied) {
		return Reply{Text: "🚫 Access denied: " + target, Err: err}
	}
	return Reply{Text: "Directory not found: " + target, Err: err}
}

func (e *Engine) device(log *logrus.Entry, args string) Reply {
	ip := e.lookupIP(e.hostname())

	label := strings.TrimSpace(args)
	if label == "" {
		return Reply{Text: fmt.Sprintf("🖥️ %s (%s)\n\nUse /device <name> to change.", e.session.DeviceLabel(), ip)}
	}

	e.session.SetDeviceLabel(label)
	log.WithField("device", label).Info("device-label-changed")
	return Reply{Text: fmt.Sprintf("✅ Device name set to: %s (%s)", label, ip)}
}

func (e *Engine) listBookmarks() Reply {
	bookmarks := e.session.Bookmarks()
	if len(bookmarks) == 0 {
		return Reply{Text: "No bookmarks yet. Use /pwd to add one."}
	}
	return Reply{Text: "Bookmarks:", Actions: BookmarkList(bookmarks)}
}

func (e *Engine) buttonPress(ctx context.Context, log *logrus.Entry, tag string) Reply {
	action, ok := ParseAction(tag)
	if !ok {
		log.WithField("tag", tag).Warn("unknown-button-tag")
		return Reply{Text: "Unknown action.", Edit: true}
	}

	switch action.Verb {
	case VerbBookmarkAdd:
		if e.session.AddBookmark(action.Path) {
			log.WithField("path", action.Path).Info("bookmark-added")
			return Reply{Text: fmt.Sprintf("📁 %s\n✅ Bookmarked!", action.Path), Edit: true}
		}
		return Reply{Text: fmt.Sprintf("📁 %s\n(already bookmarked)", action.Path), Edit: true}

	case VerbBookmarkJump:
		target, err := e.session.JumpTo(action.Path, e.isBlocked(ctx))
		if err != nil {
			reply := directoryErrorReply(target, err)
			reply.Edit = true
			return reply
		}
		log.WithField("cwd", target).Info("working-directory-changed")
		return Reply{Text: "📁 Changed to: " + target, Edit: true}

	case VerbBookmarkRemove:
		if e.session.RemoveBookmark(action.Path) {
			log.WithField("path", action.Path).Info("bookmark-removed")
		}
		bookmarks := e.session.Bookmarks()
		if len(bookmarks) == 0 {
			return Reply{Text: "Bookmarks: (empty)", Edit: true}
		}
		return Reply{Text: "Bookmarks:", Actions: BookmarkList(bookmarks), Edit: true}
	}

	return Reply{Text: "Unknown action.", Edit: true}
}

func ready(r Reply) func() Reply {
	return func() Reply { return r }
}

func (e *Engine) prepareCommand(ctx context.Context, log *logrus.Entry, ev Event) func() Reply {
	command := ev.Args
	if strings.TrimSpace(command) == "" {
		return ready(Reply{Silent: true})
	}

	check := e.gate.CheckCommand(ctx, ev.Principal, command)
	if !check.Allowed {
		log.WithField("reason", check.Message()).Warn("command-rejected")
		if check.Reason == security.ReasonCommandBlocked {
			return ready(Reply{Text: "🚫 Command blocked: " + check.Match, Err: &BlockedCommandError{Entry: check.Match}})
		}
		return ready(Reply{Text: "Unauthorized.", Err: ErrUnauthorized})
	}

	cwd := e.session.WorkingDir()
	log = log.WithField("cwd", cwd)
	return func() Reply {
		return e.runCommand(ctx, log, command, cwd)
	}
}

func (e *Engine) runCommand(ctx context.Context, log *logrus.Entry, command, cwd string) Reply {
	log.Info("command-executing")

	started := time.Now()
	result, err := e.runner.Execute(ctx, command, cwd)
	elapsed := time.Since(started)

	if errors.Is(err, ErrTimedOut) {
		log.WithField("elapsed", elapsed).Warn("command-timed-out")
		return Reply{Text: fmt.Sprintf("Command timed out (%s limit).", formatLimit(e.timeout)), Err: err}
	}
	if err != nil {
		log.WithField("error", err).Error("command-failed")
		return Reply{Text: fmt.Sprintf("Error: %v", err), Err: err}
	}

	log.WithFields(logrus.Fields{
		"exit_code": result.ExitCode,
		"elapsed":   elapsed,
	}).Info("command-finished")
	return Reply{Text: result.Output(), Output: true}
}

func formatLimit(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return d.String()
}
