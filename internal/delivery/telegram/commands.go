package telegram

import (
	"context"
	"log"
	"math/rand"

	"github.com/yourusername/realtor-intake-bot/internal/usecase"
)

const fallbackWelcome = "Вітаю! Я допоможу підібрати квартиру. Розкажіть, що шукаєте, або просто відповідайте на мої питання."

func (h *BotHandler) handleCommand(ctx context.Context, req *messageRequest) {
	switch req.message.Command() {
	case "start":
		h.cmdStart(ctx, req)
	case "reset":
		h.cmdReset(ctx, req)
	case "filters":
		h.cmdFilters(ctx, req)
	case "help":
		h.sendMessage(req.chatID, "Напишіть, яку квартиру шукаєте: район, кількість кімнат, бюджет. "+
			"/reset починає пошук заново, /filters показує зібрані критерії.")
	default:
		h.sendMessage(req.chatID, "Не знаю такої команди. Спробуйте /help.")
	}
}

func (h *BotHandler) cmdStart(ctx context.Context, req *messageRequest) {
	// /start always begins from a clean slate
	h.sessions.Drop(req.userID)
	sess, release := h.sessions.Acquire(req.userID, req.chatID, req.username)
	defer release()

	welcome := fallbackWelcome
	if snap, err := h.rules.Current(); err == nil && len(snap.Welcome) > 0 {
		welcome = snap.Welcome[rand.Intn(len(snap.Welcome))]
	}
	h.sendAndLog(ctx, sess, welcome)

	action, err := h.engine.StartDialog(ctx, sess)
	if err != nil {
		log.Printf("[BOT] start dialog for user %d: %v", req.userID, err)
		return
	}
	h.executeAction(ctx, sess, action)
}

func (h *BotHandler) cmdReset(ctx context.Context, req *messageRequest) {
	sess, release := h.sessions.Acquire(req.userID, req.chatID, req.username)
	defer release()

	sess.ResetSearch()
	h.sendAndLog(ctx, sess, "Добре, починаємо спочатку.")

	action, err := h.engine.StartDialog(ctx, sess)
	if err != nil {
		log.Printf("[BOT] reset dialog for user %d: %v", req.userID, err)
		return
	}
	h.executeAction(ctx, sess, action)
}

func (h *BotHandler) cmdFilters(ctx context.Context, req *messageRequest) {
	sess, release := h.sessions.Acquire(req.userID, req.chatID, req.username)
	defer release()

	snap, err := h.rules.Current()
	if err != nil {
		log.Printf("[BOT] rules unavailable for /filters: %v", err)
		return
	}
	summary := usecase.FilterSummary(sess.Filters, snap)
	if summary == "" {
		h.sendAndLog(ctx, sess, "Поки що критеріїв немає. Розкажіть, що шукаєте.")
		return
	}
	h.sendAndLog(ctx, sess, "Ваші критерії:\n"+summary)
}
