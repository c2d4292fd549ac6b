package telegram

import (
	"sync"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const (
	// DefaultMaxOutput is the largest command output sent, in characters.
	DefaultMaxOutput = 4000

	truncatedSuffix = "\n... (truncated)"

	maxLabelLen   = 30
	labelTailLen  = 27
	maxCallbackID = 64
	refPrefix     = "ref:"
)

// Commands is the menu published with setMyCommands.
var Commands = []tgbotapi.BotCommand{
	{Command: "status", Description: "Show server status"},
	{Command: "device", Description: "View/set device name"},
	{Command: "home", Description: "Go to home directory"},
	{Command: "bookmark", Description: "Show bookmarks"},
	{Command: "start", Description: "Start session"},
	{Command: "help", Description: "Show help"},
	{Command: "cd", Description: "Change directory"},
	{Command: "pwd", Description: "Show current directory"},
}

var commandKinds = map[string]core.Kind{
	"start":    core.KindStart,
	"help":     core.KindHelp,
	"cd":       core.KindChangeDir,
	"home":     core.KindHome,
	"pwd":      core.KindPwd,
	"status":   core.KindStatus,
	"device":   core.KindDevice,
	"bookmark": core.KindListBookmarks,
}

// FormatOutput truncates out to max characters and wraps it in a code block.
func FormatOutput(out string, max int) string {
	runes := []rune(out)
	if max > 0 && len(runes) > max {
		out = string(runes[:max]) + truncatedSuffix
	}
	return "```\n" + out + "\n```"
}

// ShortenPath keeps the tail of long paths so button labels stay readable.
func ShortenPath(path string) string {
	runes := []rune(path)
	if len(runes) <= maxLabelLen {
		return path
	}
	return "..." + string(runes[len(runes)-labelTailLen:])
}

// ActionLabel is the button text for a.
func ActionLabel(a core.Action) string {
	switch a.Verb {
	case core.VerbBookmarkAdd:
		return "Add to bookmark"
	case core.VerbBookmarkJump:
		return "📁 " + ShortenPath(a.Path)
	case core.VerbBookmarkRemove:
		return "❌"
	}
	return string(a.Verb)
}

func (b *Bot) keyboard(actions [][]core.Action) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, row := range actions {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, a := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(ActionLabel(a), b.tags.data(a.Tag())))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// tagStore swaps action tags that exceed Telegram's callback data limit for
// a stable reference and maps them back when the button is pressed.
type tagStore struct {
	mu   sync.Mutex
	refs map[string]string
}

func newTagStore() *tagStore {
	return &tagStore{refs: make(map[string]string)}
}

func (s *tagStore) data(tag string) string {
	if len(tag) <= maxCallbackID {
		return tag
	}
	ref := refPrefix + uuid.NewSHA1(uuid.NameSpaceURL, []byte(tag)).String()

	s.mu.Lock()
	s.refs[ref] = tag
	s.mu.Unlock()
	return ref
}

func (s *tagStore) resolve(data string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag, ok := s.refs[data]; ok {
		return tag
	}
	return data
}
