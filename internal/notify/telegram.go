package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

// telegramAPI is the subset of *tgbotapi.BotAPI used here.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// callback data is "act:<action index>:<request id>"; Telegram caps it at
// 64 bytes, so action ids are sent by position.
const callbackPrefix = "act"

// TelegramDeliverer sends deliveries to one chat, with the category's
// actions as inline keyboard buttons.
type TelegramDeliverer struct {
	api    telegramAPI
	chatID int64
	log    zerolog.Logger
}

// NewTelegramDeliverer connects to the Bot API with token.
func NewTelegramDeliverer(token string, chatID int64) (*TelegramDeliverer, *tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return newTelegramDeliverer(api, chatID), api, nil
}

func newTelegramDeliverer(api telegramAPI, chatID int64) *TelegramDeliverer {
	return &TelegramDeliverer{
		api:    api,
		chatID: chatID,
		log:    log.With().Str("component", "telegram").Logger(),
	}
}

// Name implements Deliverer.
func (*TelegramDeliverer) Name() string { return "telegram" }

// Deliver implements Deliverer. Only banner presentation sends a message;
// Telegram has no separate sound or badge.
func (t *TelegramDeliverer) Deliver(_ context.Context, d domain.Delivery) error {
	if !d.Options.Has(domain.PresentBanner) {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, formatMessage(d.Request.Content))
	msg.DisableNotification = !d.Request.Content.Sound || !d.Options.Has(domain.PresentSound)
	if kb, ok := actionKeyboard(d); ok {
		msg.ReplyMarkup = kb
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	t.log.Debug().Str("id", d.Request.ID).Int("msg_id", sent.MessageID).Msg("telegram message sent")
	return nil
}

func formatMessage(c domain.NotificationContent) string {
	if c.Body == "" {
		return c.Title
	}
	return c.Title + "\n\n" + c.Body
}

func actionKeyboard(d domain.Delivery) (tgbotapi.InlineKeyboardMarkup, bool) {
	if d.Category == nil || len(d.Category.Actions) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(d.Category.Actions))
	for i, a := range d.Category.Actions {
		data := fmt.Sprintf("%s:%d:%s", callbackPrefix, i, d.Request.ID)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Title, data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

func parseCallback(data string) (index int, requestID string, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != callbackPrefix || parts[2] == "" {
		return 0, "", false
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil || i < 0 {
		return 0, "", false
	}
	return i, parts[2], true
}

// Listen routes inline-button presses from updates into the dispatcher
// until ctx is done or updates closes. Presses from any chat other than the
// configured one are dropped.
func (t *TelegramDeliverer) Listen(ctx context.Context, updates <-chan tgbotapi.Update, d *Dispatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			cb := u.CallbackQuery
			if cb == nil {
				continue
			}
			if !t.fromOwnChat(cb) {
				t.log.Debug().Str("callback", cb.ID).Msg("callback from foreign chat ignored")
				continue
			}
			t.handleCallback(ctx, cb, d)
		}
	}
}

func (t *TelegramDeliverer) fromOwnChat(cb *tgbotapi.CallbackQuery) bool {
	return cb.Message != nil && cb.Message.Chat != nil && cb.Message.Chat.ID == t.chatID
}

func (t *TelegramDeliverer) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, d *Dispatcher) {
	reply := ""
	defer func() {
		// Answer callback to remove loading state
		if _, err := t.api.Request(tgbotapi.NewCallback(cb.ID, reply)); err != nil {
			t.log.Warn().Err(err).Msg("answer callback")
		}
	}()

	idx, reqID, ok := parseCallback(cb.Data)
	if !ok {
		return
	}
	actionID, err := t.actionAt(ctx, d.center, reqID, idx)
	if err != nil {
		reply = "This reminder is no longer active."
		t.log.Debug().Err(err).Str("id", reqID).Msg("callback for unknown action")
		return
	}
	if err := d.HandleAction(ctx, reqID, actionID); err != nil {
		reply = "This reminder is no longer active."
		t.log.Debug().Err(err).Str("id", reqID).Msg("handle action")
	}
}

func (t *TelegramDeliverer) actionAt(ctx context.Context, c *Center, reqID string, idx int) (string, error) {
	req, err := c.Get(ctx, reqID)
	if err != nil {
		return "", err
	}
	cat, err := c.Category(ctx, req.Content.CategoryID)
	if err != nil {
		return "", err
	}
	if cat == nil || idx >= len(cat.Actions) {
		return "", ErrUnknownAction
	}
	return cat.Actions[idx].ID, nil
}
