package bridge

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
	"github.com/ivankudzin/muji/internal/infra/telegram"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	ordersvc "github.com/ivankudzin/muji/internal/services/orders"
	"github.com/ivankudzin/muji/internal/store"
)

const adminID = int64(777)

type sentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]telegram.Button
}

type recorderBot struct {
	nextMsgID int
	sent      []sentMessage
	answers   []string
}

func (b *recorderBot) Listen(ctx context.Context, _ telegram.Handlers) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *recorderBot) SendText(_ context.Context, chatID int64, text string) error {
	b.sent = append(b.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (b *recorderBot) SendWithButtons(_ context.Context, chatID int64, text string, rows ...[]telegram.Button) (int, error) {
	b.nextMsgID++
	b.sent = append(b.sent, sentMessage{ChatID: chatID, Text: text, Rows: rows})
	return b.nextMsgID, nil
}

func (b *recorderBot) AnswerCallback(_ context.Context, _ string, text string) error {
	b.answers = append(b.answers, text)
	return nil
}

func (b *recorderBot) lastText() string {
	if len(b.sent) == 0 {
		return ""
	}
	return b.sent[len(b.sent)-1].Text
}

func newTestBridge(t *testing.T) (*Bridge, *recorderBot, *store.Store, *ordersvc.Service) {
	t.Helper()

	st := store.New(filepath.Join(t.TempDir(), "doc.json"))
	orderLedger := ordersvc.NewService(nil)
	chatService := chatsvc.NewService(orderLedger, nil)

	if _, err := st.Update(func(doc *model.Document) error {
		doc.Profiles = append(doc.Profiles, model.Profile{ID: 1, Name: "Alice", Visible: true})
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	bot := &recorderBot{}
	b := New(st, chatService, bot, []int64{adminID}, nil)
	return b, bot, st, orderLedger
}

func TestNotifyNewMessageMapsNotificationToTarget(t *testing.T) {
	b, bot, _, _ := newTestBridge(t)
	ctx := context.Background()

	b.NotifyNewMessage(ctx, 1, "Alice", "42", "hello there")

	if len(bot.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(bot.sent))
	}
	notification := bot.sent[0]
	if notification.ChatID != adminID {
		t.Fatalf("notification went to %d", notification.ChatID)
	}
	if len(notification.Rows) != 2 {
		t.Fatalf("expected two keyboard rows, got %d", len(notification.Rows))
	}
	if notification.Rows[0][0].Data != "reply_1_42" {
		t.Fatalf("unexpected reply payload %q", notification.Rows[0][0].Data)
	}
	if notification.Rows[0][1].Data != "payment_1_42" {
		t.Fatalf("unexpected payment payload %q", notification.Rows[0][1].Data)
	}

	// A plain Telegram reply to that notification must land in the chat.
	err := b.handleText(ctx, telegram.TextUpdate{
		ChatID:    adminID,
		UserID:    adminID,
		Text:      "on my way",
		ReplyToID: 1,
	})
	if err != nil {
		t.Fatalf("handle reply: %v", err)
	}

	doc := b.store.Load()
	if len(doc.Messages) != 1 {
		t.Fatalf("expected one stored message, got %d", len(doc.Messages))
	}
	if doc.Messages[0].FromUser || doc.Messages[0].Text != "on my way" {
		t.Fatalf("unexpected stored message: %+v", doc.Messages[0])
	}
}

func TestReplySessionFlow(t *testing.T) {
	b, bot, _, _ := newTestBridge(t)
	ctx := context.Background()

	err := b.handleCallback(ctx, telegram.CallbackUpdate{
		CallbackID: "cb1",
		ChatID:     adminID,
		UserID:     adminID,
		Data:       "reply_1_42",
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	if err := b.handleText(ctx, telegram.TextUpdate{ChatID: adminID, UserID: adminID, Text: "hi from operator"}); err != nil {
		t.Fatalf("session text: %v", err)
	}

	doc := b.store.Load()
	if len(doc.Messages) != 1 || doc.Messages[0].Text != "hi from operator" {
		t.Fatalf("session reply not delivered: %+v", doc.Messages)
	}

	// Cancel closes the session; the next text has nowhere to go.
	if err := b.handleCommand(ctx, telegram.CommandUpdate{ChatID: adminID, UserID: adminID, Command: "cancel"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := b.handleText(ctx, telegram.TextUpdate{ChatID: adminID, UserID: adminID, Text: "lost"}); err != nil {
		t.Fatalf("text after cancel: %v", err)
	}

	doc = b.store.Load()
	if len(doc.Messages) != 1 {
		t.Fatalf("text after cancel must not be delivered: %+v", doc.Messages)
	}
	if !strings.Contains(bot.lastText(), "No conversation selected") {
		t.Fatalf("expected a hint, got %q", bot.lastText())
	}
}

func TestPaymentCallbackBooksOrder(t *testing.T) {
	b, bot, st, orderLedger := newTestBridge(t)
	ctx := context.Background()

	if _, err := st.Update(func(doc *model.Document) error {
		_, err := orderLedger.Quote(doc, ordersvc.QuoteInput{ProfileID: 1, ExternalUserID: "42", Amount: 100})
		return err
	}); err != nil {
		t.Fatal(err)
	}

	err := b.handleCallback(ctx, telegram.CallbackUpdate{
		CallbackID: "cb2",
		ChatID:     adminID,
		UserID:     adminID,
		Data:       "payment_1_42",
	})
	if err != nil {
		t.Fatalf("payment callback: %v", err)
	}

	doc := st.Load()
	if doc.Orders[0].Status != enums.OrderStatusBooked {
		t.Fatalf("order not booked: %q", doc.Orders[0].Status)
	}

	lastMsg := doc.Messages[len(doc.Messages)-1]
	if !lastMsg.System || !strings.Contains(lastMsg.Text, doc.Orders[0].Code) {
		t.Fatalf("missing system confirmation: %+v", lastMsg)
	}
	if !strings.Contains(bot.lastText(), doc.Orders[0].Code) {
		t.Fatalf("operator feedback misses order code: %q", bot.lastText())
	}
}

func TestPaymentCallbackWithoutOrder(t *testing.T) {
	b, bot, _, _ := newTestBridge(t)

	err := b.handleCallback(context.Background(), telegram.CallbackUpdate{
		CallbackID: "cb3",
		ChatID:     adminID,
		UserID:     adminID,
		Data:       "payment_1_42",
	})
	if err != nil {
		t.Fatalf("payment callback: %v", err)
	}

	if len(bot.answers) == 0 || !strings.Contains(bot.answers[len(bot.answers)-1], "No unpaid order") {
		t.Fatalf("expected no-order answer, got %v", bot.answers)
	}
}

func TestNonAdminUpdatesAreIgnored(t *testing.T) {
	b, bot, _, _ := newTestBridge(t)
	ctx := context.Background()
	stranger := int64(1234)

	if err := b.handleCommand(ctx, telegram.CommandUpdate{ChatID: stranger, UserID: stranger, Command: "chats"}); err != nil {
		t.Fatalf("command: %v", err)
	}
	if err := b.handleText(ctx, telegram.TextUpdate{ChatID: stranger, UserID: stranger, Text: "hello"}); err != nil {
		t.Fatalf("text: %v", err)
	}

	if len(bot.sent) != 0 {
		t.Fatalf("stranger got responses: %+v", bot.sent)
	}
	if len(b.store.Load().Messages) != 0 {
		t.Fatal("stranger text was delivered")
	}
}

func TestBrokenCallbackPayload(t *testing.T) {
	b, bot, _, _ := newTestBridge(t)

	err := b.handleCallback(context.Background(), telegram.CallbackUpdate{
		CallbackID: "cb4",
		ChatID:     adminID,
		UserID:     adminID,
		Data:       "reply_zero",
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if len(bot.answers) == 0 || bot.answers[len(bot.answers)-1] != "Broken button" {
		t.Fatalf("expected broken-button answer, got %v", bot.answers)
	}
}

// Full booking round trip: the user asks to pay, the operator confirms
// through the bridge, and the user sees both the confirmation reply and
// the system message.
func TestBookingFlowEndToEnd(t *testing.T) {
	b, _, st, orderLedger := newTestBridge(t)
	chatService := b.chats
	ctx := context.Background()

	if _, err := st.Update(func(doc *model.Document) error {
		if _, err := orderLedger.Quote(doc, ordersvc.QuoteInput{ProfileID: 1, ExternalUserID: "42", Amount: 100}); err != nil {
			return err
		}
		_, err := chatService.AppendMessage(doc, chatsvc.AppendInput{
			ProfileID:      1,
			ExternalUserID: "42",
			FromUser:       true,
			Text:           "I have paid",
		})
		return err
	}); err != nil {
		t.Fatal(err)
	}

	b.NotifyNewMessage(ctx, 1, "Alice", "42", "I have paid")

	err := b.handleText(ctx, telegram.TextUpdate{
		ChatID:    adminID,
		UserID:    adminID,
		Text:      "Payment successful, see you",
		ReplyToID: 1,
	})
	if err != nil {
		t.Fatalf("operator confirmation: %v", err)
	}

	doc := st.Load()
	if doc.Orders[0].Status != enums.OrderStatusBooked {
		t.Fatalf("order not booked: %q", doc.Orders[0].Status)
	}
	if doc.Orders[0].BookedAt == nil {
		t.Fatal("booked_at not stamped")
	}

	chatID := doc.Chats[0].ID
	messages := chatService.MessagesForChat(doc, chatID)
	if len(messages) != 3 {
		t.Fatalf("expected user msg, reply and system msg, got %d", len(messages))
	}
	if messages[1].FromUser || messages[1].Text != "Payment successful, see you" {
		t.Fatalf("unexpected reply: %+v", messages[1])
	}
	if !messages[2].System {
		t.Fatalf("expected system confirmation last: %+v", messages[2])
	}
}
