// Package bot sends order cards to vendor and admin Telegram chats and
// lets those chats move orders along with inline buttons.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"streetkitchen/config"
	"streetkitchen/models"
	"streetkitchen/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	adminChatID int64

	orderLocks sync.Map // map[orderID]*sync.Mutex, serializes edits of one order's cards
}

func New(cfg config.TelegramConfig) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.NotifyToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Bot{api: api, adminChatID: cfg.AdminChatID}, nil
}

// cardMarkup converts OrderCardContent.Buttons to Telegram inline keyboard (URL vs callback).
func cardMarkup(c services.OrderCardContent) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			if btn.URL != "" {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
			}
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// cardTargets lists the chats that get an order's card. The admin chat is
// skipped when it is also the vendor's chat.
func cardTargets(v *models.Vendor, adminChatID int64) map[string]int64 {
	out := make(map[string]int64, 2)
	if v.TelegramChatID != nil && *v.TelegramChatID != 0 {
		out[services.AudienceVendor] = *v.TelegramChatID
	}
	if adminChatID != 0 && out[services.AudienceVendor] != adminChatID {
		out[services.AudienceAdmin] = adminChatID
	}
	return out
}

// canManage reports whether chatID may change orders of vendor v.
func canManage(chatID int64, v *models.Vendor, adminChatID int64) bool {
	if adminChatID != 0 && chatID == adminChatID {
		return true
	}
	return v.TelegramChatID != nil && *v.TelegramChatID == chatID
}

func (b *Bot) lockOrder(orderID int64) func() {
	v, _ := b.orderLocks.LoadOrStore(orderID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forgetFinishedOrder drops the order's lock once no further status change
// can happen.
func (b *Bot) forgetFinishedOrder(orderID int64, status string) {
	if services.IsTerminalStatus(status) {
		b.orderLocks.Delete(orderID)
	}
}

// OrderPlaced sends the new order's card to the vendor and admin chats.
func (b *Bot) OrderPlaced(ctx context.Context, ev models.OrderEvent) error {
	unlock := b.lockOrder(ev.Order.ID)
	defer unlock()

	content := services.BuildVendorOrderCard(&ev.Order, &ev.Vendor)
	var errs []error
	for audience, chatID := range cardTargets(&ev.Vendor, b.adminChatID) {
		if err := b.upsertOrderCard(ctx, audience, ev.Order.ID, chatID, content); err != nil {
			errs = append(errs, fmt.Errorf("%s card: %w", audience, err))
			continue
		}
		meta := map[string]interface{}{
			"order_id": ev.Order.ID,
			"status":   ev.Order.Status,
			"sent_via": "order_placed",
		}
		if err := services.SaveOutboundMessage(ctx, chatID, content.Text, meta); err != nil {
			log.WithError(err).WithField("order_id", ev.Order.ID).Warn("Save outbound message failed")
		}
	}
	return errors.Join(errs...)
}

// upsertOrderCard edits the existing card when one was sent before,
// otherwise sends a new one and remembers its message id. A card deleted
// in the chat is sent again; "message is not modified" is not an error.
func (b *Bot) upsertOrderCard(ctx context.Context, audience string, orderID, chatID int64, content services.OrderCardContent) error {
	prevChat, messageID, ok, err := services.GetOrderMessagePointer(ctx, orderID, audience)
	if err != nil {
		return err
	}
	if ok && prevChat == chatID {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, content.Text)
		if kb := cardMarkup(content); kb != nil {
			edit.ReplyMarkup = kb
		} else {
			edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		}
		_, err = b.api.Send(edit)
		if err == nil {
			return nil
		}
		errStr := err.Error()
		if strings.Contains(errStr, "not modified") {
			return nil
		}
		if !strings.Contains(errStr, "not found") {
			return err
		}
	}

	msg := tgbotapi.NewMessage(chatID, content.Text)
	if kb := cardMarkup(content); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return err
	}
	return services.UpsertOrderMessagePointer(ctx, orderID, audience, chatID, sent.MessageID)
}

// RefreshOrderCards re-renders an order's cards after its status changed.
func (b *Bot) RefreshOrderCards(ctx context.Context, orderID int64) {
	unlock := b.lockOrder(orderID)
	defer unlock()

	o, err := services.GetOrder(ctx, orderID)
	if err != nil {
		log.WithError(err).WithField("order_id", orderID).Warn("Refresh order cards: load order")
		return
	}
	v, err := services.GetVendorByID(ctx, o.VendorID)
	if err != nil {
		log.WithError(err).WithField("order_id", orderID).Warn("Refresh order cards: load vendor")
		return
	}
	content := services.BuildVendorOrderCard(o, v)
	for audience, chatID := range cardTargets(v, b.adminChatID) {
		if err := b.upsertOrderCard(ctx, audience, orderID, chatID, content); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"order_id": orderID,
				"audience": audience,
			}).Warn("Refresh order card failed")
		}
	}
	b.forgetFinishedOrder(orderID, o.Status)
}

func (b *Bot) answer(callbackQueryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackQueryID, text)); err != nil {
		log.WithError(err).Debug("Answer callback failed")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	orderID, status, ok := services.ParseOrderStatusCallback(cq.Data)
	if !ok || cq.Message == nil {
		b.answer(cq.ID, "")
		return
	}

	o, err := services.GetOrder(ctx, orderID)
	if err != nil {
		b.answer(cq.ID, "Order not found")
		return
	}
	v, err := services.GetVendorByID(ctx, o.VendorID)
	if err != nil || !canManage(cq.Message.Chat.ID, v, b.adminChatID) {
		b.answer(cq.ID, "Not allowed")
		return
	}

	by := "telegram"
	if cq.From != nil && cq.From.UserName != "" {
		by = "telegram @" + cq.From.UserName
	}
	unlock := b.lockOrder(orderID)
	_, err = services.UpdateOrderStatus(ctx, orderID, status, "via "+by)
	unlock()
	switch {
	case errors.Is(err, services.ErrInvalidStatusTransition):
		b.answer(cq.ID, "Order is already "+o.Status)
	case err != nil:
		log.WithError(err).WithField("order_id", orderID).Error("Update order status from telegram")
		b.answer(cq.ID, "Something went wrong")
		return
	default:
		b.answer(cq.ID, "Updated")
	}
	b.RefreshOrderCards(ctx, orderID)
}

// Start polls Telegram for button presses until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
		}
	}
}
