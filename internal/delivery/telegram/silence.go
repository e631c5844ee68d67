package telegram

import (
	"context"
	"log"
	"time"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

const silenceCheckInterval = 30 * time.Second

// runSilenceMonitor nudges users who went quiet mid-conversation, once
// per silence. The nudge text is the "silence" reaction from the rule
// tables; without that row the monitor stays dormant.
func (h *BotHandler) runSilenceMonitor(ctx context.Context) {
	if h.silenceThreshold <= 0 {
		return
	}
	ticker := time.NewTicker(silenceCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.checkSilences(ctx)
		}
	}
}

func (h *BotHandler) checkSilences(ctx context.Context) {
	snap, err := h.rules.Current()
	if err != nil {
		return
	}
	nudge, ok := snap.Reaction("silence")
	if !ok {
		return
	}

	cutoff := time.Now().Add(-h.silenceThreshold)
	h.sessions.ForEach(func(sess *entity.Session) {
		if sess.SilenceNotified || sess.LastActivity.After(cutoff) {
			return
		}
		switch sess.State {
		case entity.StateCollecting, entity.StateReady, entity.StateAwaitingContact:
		default:
			return
		}
		sess.SilenceNotified = true
		h.sendMessage(sess.ChatID, nudge)
		h.logOutbound(ctx, sess, nudge)
		log.Printf("[BOT] silence nudge sent to user %d", sess.UserID)
	})
}
