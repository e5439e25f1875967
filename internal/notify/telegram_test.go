package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

type fakeTelegram struct {
	sendErr  error
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func sampleDelivery(opts domain.PresentationOptions) domain.Delivery {
	req := waterRequest("water-reminder-6F9619FF-8B86-D011-B42D-00C04FC964FF", domain.DailyAt(9, 0))
	return domain.Delivery{
		Request: req,
		Category: &domain.NotificationCategory{ID: "WATER_REMINDER", Actions: []domain.NotificationAction{
			{ID: "DRINK_ACTION", Title: "I drank it"},
			{ID: "SNOOZE_ACTION", Title: "Snooze 30 minutes"},
		}},
		Options: opts,
	}
}

func TestTelegramDeliver_MessageWithKeyboard(t *testing.T) {
	api := &fakeTelegram{}
	td := newTelegramDeliverer(api, 42)
	if td.Name() != "telegram" {
		t.Fatalf("name = %q", td.Name())
	}

	if err := td.Deliver(context.Background(), sampleDelivery(allOptions)); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("sent = %d", len(api.sent))
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", api.sent[0])
	}
	if msg.ChatID != 42 || !strings.HasPrefix(msg.Text, "Time to drink water!\n\n") || msg.DisableNotification {
		t.Fatalf("message = %+v", msg)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard = %+v", msg.ReplyMarkup)
	}
	for i, b := range kb.InlineKeyboard[0] {
		if b.CallbackData == nil || len(*b.CallbackData) > 64 {
			t.Fatalf("button %d callback data invalid: %v", i, b.CallbackData)
		}
		idx, id, ok := parseCallback(*b.CallbackData)
		if !ok || idx != i || id != "water-reminder-6F9619FF-8B86-D011-B42D-00C04FC964FF" {
			t.Fatalf("button %d round-trip = %d %q %v", i, idx, id, ok)
		}
	}
}

func TestTelegramDeliver_SilentAndNoBanner(t *testing.T) {
	api := &fakeTelegram{}
	td := newTelegramDeliverer(api, 1)

	if err := td.Deliver(context.Background(), sampleDelivery(domain.PresentSound)); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 0 {
		t.Fatalf("no banner, no message")
	}

	d := sampleDelivery(domain.PresentBanner)
	d.Category = nil
	if err := td.Deliver(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	msg := api.sent[0].(tgbotapi.MessageConfig)
	if !msg.DisableNotification || msg.ReplyMarkup != nil {
		t.Fatalf("expected silent message without keyboard: %+v", msg)
	}

	api.sendErr = errors.New("429")
	if err := td.Deliver(context.Background(), sampleDelivery(allOptions)); err == nil {
		t.Fatalf("expected send error")
	}
}

func TestParseCallback_Rejects(t *testing.T) {
	for _, s := range []string{"", "act", "act:x:id", "act:-1:id", "act:0:", "other:0:id"} {
		if _, _, ok := parseCallback(s); ok {
			t.Fatalf("parseCallback(%q) should fail", s)
		}
	}
}

func TestTelegramListen_RoutesCallbacks(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 8, 0, 0, 0, utc)}
	c := authorizedCenter(t, clock)
	ctx := context.Background()
	del := &stubDelegate{opts: allOptions}
	d := NewDispatcher(c, del, time.Minute)
	_ = c.Add(ctx, waterRequest("r1", domain.DailyAt(9, 0)))

	api := &fakeTelegram{}
	td := newTelegramDeliverer(api, 1)

	own := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}
	updates := make(chan tgbotapi.Update, 3)
	updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb1", Data: "act:1:r1", Message: own}}
	updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb2", Data: "act:0:gone", Message: own}}
	updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello"}}
	close(updates)

	td.Listen(ctx, updates, d)

	del.mu.Lock()
	defer del.mu.Unlock()
	if len(del.responses) != 1 || del.responses[0].ActionID != "SNOOZE_ACTION" || del.responses[0].RequestID != "r1" {
		t.Fatalf("responses = %+v", del.responses)
	}
	if len(api.requests) != 2 {
		t.Fatalf("every callback is answered, got %d", len(api.requests))
	}
	if cb, ok := api.requests[1].(tgbotapi.CallbackConfig); !ok || cb.Text == "" {
		t.Fatalf("stale callback should be answered with a notice: %+v", api.requests[1])
	}
}

func TestTelegramListen_IgnoresForeignChats(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 8, 0, 0, 0, utc)}
	c := authorizedCenter(t, clock)
	ctx := context.Background()
	del := &stubDelegate{opts: allOptions}
	d := NewDispatcher(c, del, time.Minute)
	_ = c.Add(ctx, waterRequest("r1", domain.DailyAt(9, 0)))

	api := &fakeTelegram{}
	td := newTelegramDeliverer(api, 1)

	updates := make(chan tgbotapi.Update, 3)
	updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "x1", Data: "act:0:r1",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 999}}}}
	updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "x2", Data: "act:0:r1"}}
	updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "x3", Data: "act:0:r1",
		Message: &tgbotapi.Message{}}}
	close(updates)

	td.Listen(ctx, updates, d)

	del.mu.Lock()
	defer del.mu.Unlock()
	if len(del.responses) != 0 {
		t.Fatalf("foreign callbacks reached the delegate: %+v", del.responses)
	}
	if len(api.requests) != 0 {
		t.Fatalf("foreign callbacks answered: %d", len(api.requests))
	}
}
