package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot wraps the long-poll update stream and the send endpoints the bridge
// needs. Updates are delivered to typed handler callbacks; a failing
// handler is logged and the loop moves on to the next update.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

type CommandUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Command  string
	Args     string
}

type TextUpdate struct {
	ChatID    int64
	UserID    int64
	Username  string
	Text      string
	ReplyToID int
}

type CallbackUpdate struct {
	CallbackID string
	ChatID     int64
	UserID     int64
	Username   string
	Data       string
}

type Handlers struct {
	OnCommand  func(context.Context, CommandUpdate) error
	OnText     func(context.Context, TextUpdate) error
	OnCallback func(context.Context, CallbackUpdate) error
}

// Button is one inline keyboard button; Data is the callback payload.
type Button struct {
	Label string
	Data  string
}

func NewBot(token string, logger *zap.Logger) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{api: api, logger: logger}, nil
}

// Listen consumes the update stream until ctx is cancelled. Handler errors
// never terminate the loop; they are logged and followed by a short
// backoff so a persistently failing handler cannot spin hot.
func (b *Bot) Listen(ctx context.Context, handlers Handlers) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if err := b.dispatch(ctx, update, handlers); err != nil {
				b.logger.Error("telegram update handling failed", zap.Error(err), zap.Int("update_id", update.UpdateID))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
				}
			}
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update, handlers Handlers) error {
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil && handlers.OnCallback != nil {
		chatID := int64(0)
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		return handlers.OnCallback(ctx, CallbackUpdate{
			CallbackID: update.CallbackQuery.ID,
			ChatID:     chatID,
			UserID:     update.CallbackQuery.From.ID,
			Username:   update.CallbackQuery.From.UserName,
			Data:       update.CallbackQuery.Data,
		})
	}

	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	if update.Message.IsCommand() && handlers.OnCommand != nil {
		return handlers.OnCommand(ctx, CommandUpdate{
			ChatID:   update.Message.Chat.ID,
			UserID:   update.Message.From.ID,
			Username: update.Message.From.UserName,
			Command:  update.Message.Command(),
			Args:     update.Message.CommandArguments(),
		})
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" || handlers.OnText == nil {
		return nil
	}

	replyToID := 0
	if update.Message.ReplyToMessage != nil {
		replyToID = update.Message.ReplyToMessage.MessageID
	}
	return handlers.OnText(ctx, TextUpdate{
		ChatID:    update.Message.Chat.ID,
		UserID:    update.Message.From.ID,
		Username:  update.Message.From.UserName,
		Text:      text,
		ReplyToID: replyToID,
	})
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := b.send(ctx, chatID, text, nil)
	return err
}

// SendWithButtons sends a message with an inline keyboard (one row per
// button slice) and returns the sent message id so the caller can map
// replies back to it.
func (b *Bot) SendWithButtons(ctx context.Context, chatID int64, text string, rows ...[]Button) (int, error) {
	return b.send(ctx, chatID, text, rows)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, rows [][]Button) (int, error) {
	if b == nil || b.api == nil {
		return 0, fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return 0, fmt.Errorf("chat id is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(rows) > 0 {
		keyboardRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
		for _, row := range rows {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, btn := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
			}
			keyboardRows = append(keyboardRows, buttons)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboardRows...)
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send telegram message: %w", err)
	}
	return sent.MessageID, nil
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(callbackID) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}
