package telegram

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/realtor-intake-bot/config"
	"github.com/yourusername/realtor-intake-bot/internal/infrastructure/listings"
	"github.com/yourusername/realtor-intake-bot/internal/infrastructure/storage"
	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
	"github.com/yourusername/realtor-intake-bot/internal/usecase"
)

// BotHandler Telegram delivery: receives updates, runs turns through
// the dialogue engine and executes the resulting actions.
type BotHandler struct {
	bot      *tgbotapi.BotAPI
	engine   *usecase.Engine
	rules    *rulestore.Store
	sessions *storage.SessionStore
	listings *listings.Client
	dialogs  DialogStore

	listingsLimit  int
	mediaBase      string
	notifyChatID   int64
	notifyThreadID int

	silenceThreshold time.Duration

	pool *workerPool
}

// NewBotHandler wires the delivery layer together. listingsClient may
// be nil when no search API is configured; searches then answer with a
// summary only.
func NewBotHandler(
	bot *tgbotapi.BotAPI,
	cfg *config.Config,
	engine *usecase.Engine,
	rules *rulestore.Store,
	sessions *storage.SessionStore,
	listingsClient *listings.Client,
	dialogs DialogStore,
) *BotHandler {
	h := &BotHandler{
		bot:              bot,
		engine:           engine,
		rules:            rules,
		sessions:         sessions,
		listings:         listingsClient,
		dialogs:          dialogs,
		listingsLimit:    cfg.ListingsLimit,
		mediaBase:        cfg.ListingsMediaBase,
		notifyChatID:     cfg.NotifyChatID,
		notifyThreadID:   cfg.NotifyThreadID,
		silenceThreshold: cfg.SilenceThreshold,
	}
	h.pool = newWorkerPool(h, 0)
	return h
}

// Start runs the update loop until the context is canceled.
func (h *BotHandler) Start(ctx context.Context) error {
	h.pool.start(ctx)
	h.sessions.StartCleanup(ctx)
	go h.runSilenceMonitor(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	log.Printf("[BOT] @%s is listening for updates", h.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			h.pool.stop()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				h.pool.stop()
				return nil
			}
			h.dispatch(ctx, update)
		}
	}
}

func (h *BotHandler) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || !msg.Chat.IsPrivate() {
		return
	}

	req := &messageRequest{
		ctx:      ctx,
		userID:   msg.From.ID,
		chatID:   msg.Chat.ID,
		username: msg.From.UserName,
		message:  msg,
	}
	if !h.pool.submit(req) {
		log.Printf("[BOT] queue full, dropping message from user %d", req.userID)
		h.sendMessage(req.chatID, "Забагато повідомлень одночасно, спробуйте ще раз за хвилину.")
	}
}

// processMessage is the worker entry point for one inbound message.
func (h *BotHandler) processMessage(ctx context.Context, req *messageRequest) {
	msg := req.message

	h.logInbound(ctx, req)

	switch {
	case msg.Contact != nil:
		h.handleContactShare(ctx, req)
	case msg.IsCommand():
		h.handleCommand(ctx, req)
	case msg.Text != "":
		h.handleText(ctx, req)
	}
}

func (h *BotHandler) handleText(ctx context.Context, req *messageRequest) {
	sess, release := h.sessions.Acquire(req.userID, req.chatID, req.username)
	defer release()

	h.sendTyping(req.chatID)

	action, err := h.engine.HandleTurn(ctx, sess, req.message.Text)
	if err != nil {
		log.Printf("[BOT] turn failed for user %d: %v", req.userID, err)
		h.sendMessage(req.chatID, "Вибачте, сталася помилка. Спробуйте ще раз.")
		return
	}
	for _, warning := range action.Warnings {
		log.Printf("[BOT] user %d: %s", req.userID, warning)
	}

	h.executeAction(ctx, sess, action)
}

func (h *BotHandler) handleContactShare(ctx context.Context, req *messageRequest) {
	sess, release := h.sessions.Acquire(req.userID, req.chatID, req.username)
	defer release()

	action, err := h.engine.HandleContact(ctx, sess, req.message.Contact.PhoneNumber)
	if err != nil {
		log.Printf("[BOT] contact handling failed for user %d: %v", req.userID, err)
		return
	}
	h.executeAction(ctx, sess, action)
}

func (h *BotHandler) logInbound(ctx context.Context, req *messageRequest) {
	text := req.message.Text
	if req.message.Contact != nil {
		text = "[contact] " + req.message.Contact.PhoneNumber
	}
	if err := h.dialogs.SaveMessage(ctx, dialogMessage{
		UserID:    req.userID,
		ChatID:    req.chatID,
		Username:  req.username,
		Direction: "in",
		Text:      text,
	}); err != nil {
		log.Printf("[BOT] log inbound message: %v", err)
	}
}
