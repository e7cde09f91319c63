package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
	"github.com/ivankudzin/muji/internal/infra/telegram"
	"github.com/ivankudzin/muji/internal/services/chats"
	"github.com/ivankudzin/muji/internal/store"
)

const (
	callbackListChats     = "list_chats"
	callbackReplyPrefix   = "reply_"
	callbackPaymentPrefix = "payment_"

	paymentConfirmText = "Payment successful"
)

// Bot is the transport surface the bridge drives. The production
// implementation is infra/telegram.Bot; tests substitute a recorder.
type Bot interface {
	Listen(ctx context.Context, handlers telegram.Handlers) error
	SendText(ctx context.Context, chatID int64, text string) error
	SendWithButtons(ctx context.Context, chatID int64, text string, rows ...[]telegram.Button) (int, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// target identifies one conversation: the profile being impersonated and
// the external user on the other side.
type target struct {
	ProfileID      int64
	ExternalUserID string
}

// Bridge connects operators in a Telegram chat to the web-side
// conversations. Operators answer either by replying to a notification
// message or by opening an explicit reply session with a button.
type Bridge struct {
	store    *store.Store
	chats    *chats.Service
	bot      Bot
	adminIDs map[int64]struct{}
	logger   *zap.Logger

	mu            sync.Mutex
	replySessions map[int64]target
	msgTargets    map[int]target
}

func New(st *store.Store, chatSvc *chats.Service, bot Bot, adminIDs []int64, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Bridge{
		store:         st,
		chats:         chatSvc,
		bot:           bot,
		adminIDs:      admins,
		logger:        logger,
		replySessions: make(map[int64]target),
		msgTargets:    make(map[int]target),
	}
}

// Run consumes bot updates until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	return b.bot.Listen(ctx, telegram.Handlers{
		OnCommand:  b.handleCommand,
		OnText:     b.handleText,
		OnCallback: b.handleCallback,
	})
}

// NotifyNewMessage pushes a new user message to every operator with the
// action keyboard. Sent message ids are remembered so a plain Telegram
// reply to the notification lands in the right conversation.
func (b *Bridge) NotifyNewMessage(ctx context.Context, profileID int64, profileName, externalUserID, preview string) {
	text := fmt.Sprintf("New message for <b>%s</b> (user %s):\n%s", profileName, externalUserID, preview)
	rows := [][]telegram.Button{
		{
			{Label: "Reply", Data: replyData(profileID, externalUserID)},
			{Label: "Payment OK", Data: paymentData(profileID, externalUserID)},
		},
		{
			{Label: "All chats", Data: callbackListChats},
		},
	}

	for adminID := range b.adminIDs {
		msgID, err := b.bot.SendWithButtons(ctx, adminID, text, rows...)
		if err != nil {
			b.logger.Error("notify operator failed", zap.Int64("admin_id", adminID), zap.Error(err))
			continue
		}
		b.mu.Lock()
		b.msgTargets[msgID] = target{ProfileID: profileID, ExternalUserID: externalUserID}
		b.mu.Unlock()
	}
}

func (b *Bridge) handleCommand(ctx context.Context, upd telegram.CommandUpdate) error {
	if !b.isAdmin(upd.UserID) {
		b.logger.Debug("command from non-admin ignored", zap.Int64("user_id", upd.UserID))
		return nil
	}

	switch upd.Command {
	case "start", "help":
		return b.bot.SendText(ctx, upd.ChatID,
			"Operator console.\n"+
				"/chats — open conversations\n"+
				"/cancel — close the active reply session\n"+
				"Reply to a notification to answer directly.")
	case "chats":
		return b.sendChatList(ctx, upd.ChatID)
	case "cancel":
		b.mu.Lock()
		_, had := b.replySessions[upd.UserID]
		delete(b.replySessions, upd.UserID)
		b.mu.Unlock()
		if !had {
			return b.bot.SendText(ctx, upd.ChatID, "No active reply session.")
		}
		return b.bot.SendText(ctx, upd.ChatID, "Reply session closed.")
	default:
		return b.bot.SendText(ctx, upd.ChatID, "Unknown command. Use /help.")
	}
}

func (b *Bridge) handleCallback(ctx context.Context, upd telegram.CallbackUpdate) error {
	if !b.isAdmin(upd.UserID) {
		return b.bot.AnswerCallback(ctx, upd.CallbackID, "Not allowed")
	}

	switch {
	case upd.Data == callbackListChats:
		if err := b.bot.AnswerCallback(ctx, upd.CallbackID, ""); err != nil {
			return err
		}
		return b.sendChatList(ctx, upd.ChatID)

	case strings.HasPrefix(upd.Data, callbackReplyPrefix):
		tgt, err := parseTarget(strings.TrimPrefix(upd.Data, callbackReplyPrefix))
		if err != nil {
			return b.bot.AnswerCallback(ctx, upd.CallbackID, "Broken button")
		}
		b.mu.Lock()
		b.replySessions[upd.UserID] = tgt
		b.mu.Unlock()
		if err := b.bot.AnswerCallback(ctx, upd.CallbackID, "Reply session opened"); err != nil {
			return err
		}
		return b.bot.SendText(ctx, upd.ChatID,
			fmt.Sprintf("Replying as profile %d to user %s. Send your message, /cancel to stop.", tgt.ProfileID, tgt.ExternalUserID))

	case strings.HasPrefix(upd.Data, callbackPaymentPrefix):
		tgt, err := parseTarget(strings.TrimPrefix(upd.Data, callbackPaymentPrefix))
		if err != nil {
			return b.bot.AnswerCallback(ctx, upd.CallbackID, "Broken button")
		}
		order, err := b.deliverReply(tgt, paymentConfirmText)
		if err != nil {
			b.logger.Error("payment confirm failed", zap.Int64("profile_id", tgt.ProfileID), zap.Error(err))
			return b.bot.AnswerCallback(ctx, upd.CallbackID, "Failed, try again")
		}
		if order == "" {
			return b.bot.AnswerCallback(ctx, upd.CallbackID, "No unpaid order found")
		}
		if err := b.bot.AnswerCallback(ctx, upd.CallbackID, "Order booked"); err != nil {
			return err
		}
		return b.bot.SendText(ctx, upd.ChatID, fmt.Sprintf("Order %s booked for user %s.", order, tgt.ExternalUserID))

	default:
		return b.bot.AnswerCallback(ctx, upd.CallbackID, "")
	}
}

func (b *Bridge) handleText(ctx context.Context, upd telegram.TextUpdate) error {
	if !b.isAdmin(upd.UserID) {
		b.logger.Debug("text from non-admin ignored", zap.Int64("user_id", upd.UserID))
		return nil
	}

	tgt, ok := b.resolveTarget(upd)
	if !ok {
		return b.bot.SendText(ctx, upd.ChatID,
			"No conversation selected. Reply to a notification or press Reply under one.")
	}

	if _, err := b.deliverReply(tgt, upd.Text); err != nil {
		b.logger.Error("deliver reply failed",
			zap.Int64("profile_id", tgt.ProfileID),
			zap.String("external_user_id", tgt.ExternalUserID),
			zap.Error(err))
		return err
	}
	return b.bot.SendText(ctx, upd.ChatID, "Sent.")
}

// resolveTarget prefers the notification the operator replied to, then the
// operator's open reply session.
func (b *Bridge) resolveTarget(upd telegram.TextUpdate) (target, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if upd.ReplyToID != 0 {
		if tgt, ok := b.msgTargets[upd.ReplyToID]; ok {
			return tgt, true
		}
	}
	tgt, ok := b.replySessions[upd.UserID]
	return tgt, ok
}

// deliverReply appends an operator message to the conversation. If the
// text confirms a payment the append books the pending order; the booked
// order code is returned so the operator gets feedback.
func (b *Bridge) deliverReply(tgt target, text string) (string, error) {
	bookedCode := ""
	_, err := b.store.Update(func(doc *model.Document) error {
		before := bookedOrders(doc)
		if _, err := b.chats.AppendMessage(doc, chats.AppendInput{
			ProfileID:      tgt.ProfileID,
			ExternalUserID: tgt.ExternalUserID,
			FromUser:       false,
			Text:           text,
		}); err != nil {
			return err
		}
		for _, o := range doc.Orders {
			if _, was := before[o.ID]; !was && o.Status == enums.OrderStatusBooked {
				bookedCode = o.Code
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return bookedCode, nil
}

func bookedOrders(doc *model.Document) map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, o := range doc.Orders {
		if o.Status == enums.OrderStatusBooked {
			out[o.ID] = struct{}{}
		}
	}
	return out
}

func (b *Bridge) sendChatList(ctx context.Context, chatID int64) error {
	doc := b.store.Load()
	if len(doc.Chats) == 0 {
		return b.bot.SendText(ctx, chatID, "No conversations yet.")
	}

	var sb strings.Builder
	sb.WriteString("Open conversations:\n")
	rows := make([][]telegram.Button, 0, len(doc.Chats))
	for _, chat := range doc.Chats {
		unread := b.chats.UnreadCount(doc, chat.ID)
		fmt.Fprintf(&sb, "• %s / user %s (%d unread)\n", chat.ProfileName, displayUser(chat.ExternalUserID), unread)
		rows = append(rows, []telegram.Button{{
			Label: fmt.Sprintf("%s / %s", chat.ProfileName, displayUser(chat.ExternalUserID)),
			Data:  replyData(chat.ProfileID, chat.ExternalUserID),
		}})
	}

	_, err := b.bot.SendWithButtons(ctx, chatID, sb.String(), rows...)
	return err
}

func (b *Bridge) isAdmin(userID int64) bool {
	_, ok := b.adminIDs[userID]
	return ok
}

func replyData(profileID int64, externalUserID string) string {
	return fmt.Sprintf("%s%d_%s", callbackReplyPrefix, profileID, externalUserID)
}

func paymentData(profileID int64, externalUserID string) string {
	return fmt.Sprintf("%s%d_%s", callbackPaymentPrefix, profileID, externalUserID)
}

// parseTarget splits "<profileID>_<externalUserID>". The user part may be
// empty for legacy chats and may itself contain no underscores.
func parseTarget(payload string) (target, error) {
	idPart, userPart, found := strings.Cut(payload, "_")
	if !found {
		idPart = payload
	}
	profileID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || profileID <= 0 {
		return target{}, fmt.Errorf("bad callback payload %q", payload)
	}
	return target{ProfileID: profileID, ExternalUserID: userPart}, nil
}

func displayUser(externalUserID string) string {
	if externalUserID == "" {
		return "anonymous"
	}
	return externalUserID
}
