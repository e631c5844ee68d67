package telegram

import (
	"context"
	"log"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/usecase"
)

// executeAction performs the I/O an engine turn decided on. The session
// is still under its turn lock here, so state touched while executing
// (shown listings, state rollback on search failure) stays consistent.
func (h *BotHandler) executeAction(ctx context.Context, sess *entity.Session, action entity.OutboundAction) {
	if action.Reply != "" {
		h.sendAndLog(ctx, sess, action.Reply)
	}
	switch action.Kind {
	case entity.ActionAskQuestion, entity.ActionRespond:
		h.sendAndLog(ctx, sess, action.Text)

	case entity.ActionRequestContact:
		h.sendContactRequest(ctx, sess, action.Text)

	case entity.ActionRunSearch:
		h.runSearch(ctx, sess, action)

	case entity.ActionRecordViewing:
		h.recordViewing(ctx, sess, action)

	case entity.ActionNoOp:
	}
}

func (h *BotHandler) runSearch(ctx context.Context, sess *entity.Session, action entity.OutboundAction) {
	snap, err := h.rules.Current()
	if err != nil {
		log.Printf("[BOT] rules unavailable during search for user %d: %v", sess.UserID, err)
		h.sendAndLog(ctx, sess, "Вибачте, сталася помилка. Спробуйте ще раз.")
		return
	}

	if summary := usecase.FilterSummary(action.Filters, snap); summary != "" && action.Offset == 0 {
		h.sendAndLog(ctx, sess, "Шукаю за критеріями:\n"+summary)
	}
	if err := h.dialogs.SaveFilterSnapshot(ctx, sess.UserID, action.Filters); err != nil {
		log.Printf("[BOT] save filter snapshot: %v", err)
	}

	if h.listings == nil {
		h.sendAndLog(ctx, sess, snap.Prompt("no_listings_api",
			"Передам ваші побажання менеджеру, він надішле варіанти."))
		return
	}

	items, total, err := h.listings.Search(ctx, action.Filters, action.Offset, h.listingsLimit)
	if err != nil {
		log.Printf("[BOT] search failed for user %d: %v", sess.UserID, err)
		// state stays Ready so a retry or refinement just works
		h.sendAndLog(ctx, sess, snap.Prompt("search_failed",
			"Не вдалося отримати варіанти, спробуйте ще раз за хвилину."))
		return
	}

	if len(items) == 0 {
		if action.Offset > 0 {
			h.sendAndLog(ctx, sess, snap.Prompt("no_more_results",
				"Поки що це всі варіанти за вашими критеріями."))
		} else {
			h.sendAndLog(ctx, sess, snap.Prompt("no_results",
				"За цими критеріями нічого не знайшлось. Спробуйте змінити район або бюджет."))
		}
		return
	}

	sess.ShownListingIDs = sess.ShownListingIDs[:0]
	for _, item := range items {
		sess.ShownListingIDs = append(sess.ShownListingIDs, item.ID)
		h.sendListingCard(ctx, sess, item)
	}
	// the next "more results" page starts right after what went out
	sess.SearchOffset = action.Offset + len(items)

	if teaser := extraOffersMessage(total, action.Offset+len(items)); teaser != "" {
		h.sendAndLog(ctx, sess, teaser)
	}
	h.sendAndLog(ctx, sess, snap.Prompt("after_results",
		"Сподобався якийсь варіант? Можу записати вас на перегляд."))
}

func (h *BotHandler) recordViewing(ctx context.Context, sess *entity.Session, action entity.OutboundAction) {
	req := viewingRequest{
		UserID:     sess.UserID,
		Username:   sess.Username,
		Name:       sess.Name,
		Phone:      action.Contact,
		ListingIDs: action.ListingIDs,
		Filters:    action.Filters,
	}
	if err := h.dialogs.SaveViewingRequest(ctx, req); err != nil {
		log.Printf("[BOT] save viewing request for user %d: %v", sess.UserID, err)
	}

	h.notifyViewingRequest(sess, req)
	h.sendRemoveKeyboard(ctx, sess, action.Text)
}
