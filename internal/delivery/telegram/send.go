package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/usecase"
)

// sendMessage fire-and-forget plain text send.
func (h *BotHandler) sendMessage(chatID int64, text string) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("[BOT] send to chat %d failed: %v", chatID, err)
	}
}

// sendTyping shows the typing indicator while a turn is processed.
func (h *BotHandler) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := h.bot.Request(action); err != nil {
		log.Printf("[BOT] typing action for chat %d failed: %v", chatID, err)
	}
}

// sendAndLog sends to the session's chat and records the outbound line.
func (h *BotHandler) sendAndLog(ctx context.Context, sess *entity.Session, text string) {
	if text == "" {
		return
	}
	h.sendMessage(sess.ChatID, text)
	h.logOutbound(ctx, sess, text)
}

func (h *BotHandler) sendContactRequest(ctx context.Context, sess *entity.Session, text string) {
	msg := tgbotapi.NewMessage(sess.ChatID, text)
	msg.ReplyMarkup = contactKeyboard()
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("[BOT] send contact request to chat %d failed: %v", sess.ChatID, err)
		return
	}
	h.logOutbound(ctx, sess, text)
}

// sendRemoveKeyboard sends text and drops the contact keyboard.
func (h *BotHandler) sendRemoveKeyboard(ctx context.Context, sess *entity.Session, text string) {
	msg := tgbotapi.NewMessage(sess.ChatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("[BOT] send to chat %d failed: %v", sess.ChatID, err)
		return
	}
	h.logOutbound(ctx, sess, text)
}

func (h *BotHandler) sendListingCard(ctx context.Context, sess *entity.Session, item entity.Listing) {
	text := renderListingCard(item)

	if photo := firstPhotoURL(item, h.mediaBase); photo != "" {
		card := tgbotapi.NewPhoto(sess.ChatID, tgbotapi.FileURL(photo))
		card.Caption = text
		if _, err := h.bot.Send(card); err == nil {
			h.logOutbound(ctx, sess, text)
			return
		}
		// broken media URLs happen; the text card still goes out
		log.Printf("[BOT] photo card failed for listing %d, falling back to text", item.ID)
	}
	h.sendAndLog(ctx, sess, text)
}

// notifyViewingRequest posts a lead card into the managers' group.
func (h *BotHandler) notifyViewingRequest(sess *entity.Session, req viewingRequest) {
	if h.notifyChatID == 0 {
		return
	}

	snap, err := h.rules.Current()
	if err != nil {
		log.Printf("[BOT] rules unavailable for lead notification: %v", err)
		return
	}

	var b strings.Builder
	b.WriteString("🔔 Новий запит на перегляд\n")
	if req.Name != "" {
		fmt.Fprintf(&b, "Ім'я: %s\n", req.Name)
	}
	if req.Username != "" {
		fmt.Fprintf(&b, "Telegram: @%s\n", req.Username)
	}
	fmt.Fprintf(&b, "Телефон: %s\n", req.Phone)
	if len(req.ListingIDs) > 0 {
		fmt.Fprintf(&b, "Обʼєкти: %s\n", joinIDs(req.ListingIDs))
	}
	if summary := usecase.FilterSummary(req.Filters, snap); summary != "" {
		b.WriteString("\n")
		b.WriteString(summary)
	}

	// v5.5.1 predates forum topics, so BaseChat has no thread field;
	// pass message_thread_id as a raw sendMessage parameter instead.
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", h.notifyChatID)
	params["text"] = b.String()
	if h.notifyThreadID != 0 {
		params.AddNonZero("message_thread_id", h.notifyThreadID)
	}
	if _, err := h.bot.MakeRequest("sendMessage", params); err != nil {
		log.Printf("[BOT] lead notification failed: %v", err)
	}
}

func (h *BotHandler) logOutbound(ctx context.Context, sess *entity.Session, text string) {
	if err := h.dialogs.SaveMessage(ctx, dialogMessage{
		UserID:    sess.UserID,
		ChatID:    sess.ChatID,
		Username:  sess.Username,
		Direction: "out",
		Text:      text,
	}); err != nil {
		log.Printf("[BOT] log outbound message: %v", err)
	}
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
