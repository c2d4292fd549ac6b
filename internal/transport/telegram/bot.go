// Package telegram adapts the gateway to the Telegram Bot API. It turns
// updates into core events and renders replies as messages, inline
// keyboards and callback answers.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core"
	"github.com/Lin-Jiong-HDU/shellgate/internal/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Submitter accepts events and calls deliver with their replies.
type Submitter interface {
	Submit(ctx context.Context, ev core.Event, deliver func(core.Reply)) error
}

// Config holds bot settings
type Config struct {
	PollTimeout int
	MaxOutput   int
}

// Bot represents the Telegram bot
type Bot struct {
	api      API
	dispatch Submitter
	cfg      Config
	tags     *tagStore
}

// NewAPI connects to Telegram with token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	logger.WithField("account", api.Self.UserName).Info("telegram-authorized")
	return api, nil
}

// New creates a bot that forwards updates from api to dispatch.
func New(api API, dispatch Submitter, cfg Config) *Bot {
	if cfg.MaxOutput <= 0 {
		cfg.MaxOutput = DefaultMaxOutput
	}
	if cfg.PollTimeout < 0 {
		cfg.PollTimeout = 0
	}
	return &Bot{
		api:      api,
		dispatch: dispatch,
		cfg:      cfg,
		tags:     newTagStore(),
	}
}

// Start registers the command menu and polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.RegisterCommands(); err != nil {
		logger.WithField("error", err).Warn("telegram-set-commands-failed")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	logger.Info("telegram-polling-started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// RegisterCommands publishes the bot command menu.
func (b *Bot) RegisterCommands() error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	return nil
}

// HandleUpdate routes a single update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	ev, ok := EventFromMessage(msg)
	if !ok {
		return
	}

	chatID := msg.Chat.ID
	err := b.dispatch.Submit(ctx, ev, func(r core.Reply) {
		b.sendReply(chatID, r)
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"request_id": ev.ID,
			"error":      err,
		}).Warn("telegram-submit-failed")
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil || query.Message.Chat == nil {
		b.answer(query.ID, "")
		return
	}

	principal := strconv.FormatInt(query.From.ID, 10)
	ev := core.NewEvent(principal, core.KindButtonPress, b.tags.resolve(query.Data))
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	err := b.dispatch.Submit(ctx, ev, func(r core.Reply) {
		if errors.Is(r.Err, core.ErrUnauthorized) {
			b.answer(query.ID, r.Text)
			return
		}
		b.answer(query.ID, "")
		b.editReply(chatID, messageID, r)
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"request_id": ev.ID,
			"error":      err,
		}).Warn("telegram-submit-failed")
	}
}

// EventFromMessage maps a message to an event. Unknown commands and
// messages without text are ignored.
func EventFromMessage(msg *tgbotapi.Message) (core.Event, bool) {
	if msg.From == nil || msg.Text == "" {
		return core.Event{}, false
	}
	principal := strconv.FormatInt(msg.From.ID, 10)

	if !msg.IsCommand() {
		return core.NewEvent(principal, core.KindRawCommand, msg.Text), true
	}

	kind, ok := commandKinds[msg.Command()]
	if !ok {
		return core.Event{}, false
	}
	return core.NewEvent(principal, kind, msg.CommandArguments()), true
}

func (b *Bot) sendReply(chatID int64, r core.Reply) {
	if r.Silent {
		return
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	if r.Output {
		msg.Text = FormatOutput(r.Text, b.cfg.MaxOutput)
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(r.Actions) > 0 {
		msg.ReplyMarkup = b.keyboard(r.Actions)
	}

	if _, err := b.api.Send(msg); err != nil {
		if msg.ParseMode == "" {
			logger.WithField("error", err).Warn("telegram-send-failed")
			return
		}
		// output that breaks Markdown entities is resent verbatim
		msg.ParseMode = ""
		if _, err := b.api.Send(msg); err != nil {
			logger.WithField("error", err).Warn("telegram-send-failed")
		}
	}
}

func (b *Bot) editReply(chatID int64, messageID int, r core.Reply) {
	if r.Silent {
		return
	}

	var edit tgbotapi.EditMessageTextConfig
	if len(r.Actions) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, r.Text, b.keyboard(r.Actions))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, r.Text)
	}
	if _, err := b.api.Send(edit); err != nil {
		logger.WithField("error", err).Warn("telegram-edit-failed")
	}
}

func (b *Bot) answer(queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		logger.WithField("error", err).Debug("telegram-callback-answer-failed")
	}
}
