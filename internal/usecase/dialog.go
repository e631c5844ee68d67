package usecase

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/yourusername/realtor-intake-bot/internal/domain/constants"
	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/nlp"
	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
	"github.com/yourusername/realtor-intake-bot/internal/textnorm"
)

const (
	fallbackContactPrompt = "Залиште, будь ласка, номер телефону — менеджер підтвердить час перегляду."
	fallbackViewingThanks = "Дякую! Менеджер зв'яжеться з вами найближчим часом."
	fallbackReadyPrompt   = "Чудово, підбираю варіанти за вашими критеріями."
)

var phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{7,14}\d`)

// Engine drives one conversation turn at a time. It owns no I/O: every
// turn produces a single OutboundAction for the delivery layer to
// execute, which keeps the state machine testable without Telegram.
type Engine struct {
	rules *rulestore.Store
}

func NewEngine(rules *rulestore.Store) *Engine {
	return &Engine{rules: rules}
}

// StartDialog opens (or reopens) a conversation without user text:
// /start and /reset land here. Returns the first open question or the
// search when nothing is left to ask.
func (e *Engine) StartDialog(ctx context.Context, sess *entity.Session) (entity.OutboundAction, error) {
	snap, err := e.rules.Current()
	if err != nil {
		return entity.OutboundAction{}, err
	}
	sess.Touch()
	if sess.State == entity.StateClosed {
		sess.ResetSearch()
	}
	return e.askNext(sess, snap), nil
}

// HandleTurn processes one user message against the session. The
// session is mutated in place; the caller persists it after the action
// is executed.
func (e *Engine) HandleTurn(ctx context.Context, sess *entity.Session, text string) (entity.OutboundAction, error) {
	snap, err := e.rules.Current()
	if err != nil {
		return entity.OutboundAction{}, err
	}

	sess.RememberUtterance(text, constants.MaxUtteranceHistory)
	sess.Touch()

	// a closed conversation reopens as a fresh search
	if sess.State == entity.StateClosed {
		sess.ResetSearch()
		log.Printf("[DIALOG] user %d reopened a closed dialog", sess.UserID)
	}

	if sess.State == entity.StateAwaitingContact {
		return e.handleAwaitingContact(sess, text, snap), nil
	}

	ex := nlp.Extract(text, snap, sess.PendingKey)

	if ex.HasIntent(entity.IntentNewSearch) {
		sess.ResetSearch()
		sess.State = entity.StateCollecting
		return e.askNext(sess, snap), nil
	}

	if sess.State == entity.StateGreeting {
		if name := captureName(text, snap); name != "" {
			sess.Name = name
		}
		sess.State = entity.StateCollecting
	}

	// a direct answer to the name question never reaches the extractor
	if sess.PendingKey == entity.KeyName {
		if name := nameFromAnswer(text, snap); name != "" {
			sess.Name = name
			sess.PendingKey = ""
		}
	}

	// bare skip intent targets the question on the table
	if ex.HasIntent(entity.IntentSkip) && sess.PendingKey != "" && !has(ex.Answered, sess.PendingKey) {
		ex.SkipKeys = append(ex.SkipKeys, sess.PendingKey)
	}

	sess.Filters = MergeFilters(sess.Filters, ex)
	if sess.PendingKey != "" && (has(ex.Answered, sess.PendingKey) || has(ex.SkipKeys, sess.PendingKey)) {
		sess.PendingKey = ""
	}

	// the reply sheets run on every turn, answered or not; a matched
	// objection also records the redirect key for the question flow
	var reply string
	if obj, ok := nlp.MatchObjection(text, snap); ok {
		sess.ObjectionKey = obj.Key
		reply = obj.Reply
	} else if rule, ok := nlp.MatchReaction(text, snap); ok {
		reply = rule.Reply
	}

	if ex.HasIntent(entity.IntentMoreResults) && sess.State == entity.StateReady {
		// SearchOffset already points past the listings the delivery
		// layer actually sent, whatever the configured page size
		return entity.OutboundAction{
			Kind:     entity.ActionRunSearch,
			Filters:  sess.Filters.Clone(),
			Offset:   sess.SearchOffset,
			Reply:    reply,
			Warnings: ex.Warnings,
		}, nil
	}

	if ex.HasIntent(entity.IntentViewing) {
		if sess.State == entity.StateReady {
			sess.State = entity.StateAwaitingContact
			sess.ContactRequested = true
			return entity.OutboundAction{
				Kind:  entity.ActionRequestContact,
				Text:  snap.Prompt("contact_request", fallbackContactPrompt),
				Reply: reply,
			}, nil
		}
		// not ready yet: keep collecting first
	}

	if len(ex.Answered) == 0 && len(ex.SkipKeys) == 0 && len(ex.Intents) == 0 && sess.Name != "" {
		if reply != "" {
			return entity.Respond(reply), nil
		}
		if sess.State == entity.StateReady {
			return entity.NoOp(), nil
		}
	}

	action := e.askNext(sess, snap)
	action.Reply = reply
	action.Warnings = append(action.Warnings, ex.Warnings...)
	return action, nil
}

// askNext either asks the next open question or, with nothing left to
// ask, flips the session to Ready and launches the search.
func (e *Engine) askNext(sess *entity.Session, snap *rulestore.Snapshot) entity.OutboundAction {
	prefer := sess.ObjectionKey
	sess.ObjectionKey = ""

	q, ok := NextQuestion(sess.Filters, sess.Name, prefer, snap)
	if ok {
		sess.State = entity.StateCollecting
		sess.PendingKey = q.Key
		return entity.OutboundAction{
			Kind:        entity.ActionAskQuestion,
			QuestionKey: q.Key,
			Text:        q.Text,
		}
	}

	sess.State = entity.StateReady
	sess.PendingKey = ""
	sess.SearchOffset = 0
	return entity.OutboundAction{
		Kind:    entity.ActionRunSearch,
		Filters: sess.Filters.Clone(),
		Text:    snap.Prompt("search_started", fallbackReadyPrompt),
	}
}

// handleAwaitingContact accepts a phone number or backs out to a new
// search; anything else re-asks for the contact.
func (e *Engine) handleAwaitingContact(sess *entity.Session, text string, snap *rulestore.Snapshot) entity.OutboundAction {
	if phone := ExtractPhone(text); phone != "" {
		return e.acceptContact(sess, phone, snap)
	}

	ex := nlp.Extract(text, snap, "")
	if ex.HasIntent(entity.IntentNewSearch) {
		sess.ResetSearch()
		return e.askNext(sess, snap)
	}

	return entity.OutboundAction{
		Kind: entity.ActionRequestContact,
		Text: snap.Prompt("contact_retry", fallbackContactPrompt),
	}
}

// HandleContact records a phone shared through the contact button.
func (e *Engine) HandleContact(ctx context.Context, sess *entity.Session, phone string) (entity.OutboundAction, error) {
	snap, err := e.rules.Current()
	if err != nil {
		return entity.OutboundAction{}, err
	}
	if sess.State != entity.StateAwaitingContact {
		// an unsolicited contact share still closes the loop when a
		// search already ran
		if sess.State != entity.StateReady {
			return entity.NoOp(), nil
		}
	}
	return e.acceptContact(sess, phone, snap), nil
}

func (e *Engine) acceptContact(sess *entity.Session, phone string, snap *rulestore.Snapshot) entity.OutboundAction {
	sess.Phone = phone
	sess.State = entity.StateClosed
	log.Printf("[DIALOG] user %d left contact, dialog closed", sess.UserID)
	return entity.OutboundAction{
		Kind:       entity.ActionRecordViewing,
		Filters:    sess.Filters.Clone(),
		Contact:    phone,
		ListingIDs: append([]int(nil), sess.ShownListingIDs...),
		Text:       snap.Prompt("viewing_thanks", fallbackViewingThanks),
	}
}

// ExtractPhone pulls the first plausible phone number out of the text.
func ExtractPhone(text string) string {
	m := phoneRe.FindString(text)
	if m == "" {
		return ""
	}
	var digits int
	for _, r := range m {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 9 || digits > 15 {
		return ""
	}
	return strings.TrimSpace(m)
}

// nameStopwords greeting and filler words that are never a name.
var nameStopwords = map[string]bool{
	"привит": true, "здрастуйте": true, "здравствуйте": true, "витаю": true,
	"добрий": true, "доброго": true, "день": true, "вечир": true, "ранок": true,
	"дякую": true, "будь": true, "ласка": true, "мене": true, "меня": true,
	"звати": true, "зовут": true, "я": true, "це": true, "это": true,
	"хочу": true, "шукаю": true, "ищу": true, "квартиру": true, "квартира": true,
}

// captureName looks for a plausible name among the comma segments of a
// greeting message: short, letters only, not recognizable as a filter
// value, intent or location, and not a greeting filler word.
func captureName(raw string, snap *rulestore.Snapshot) string {
	return pickName(raw, snap, false)
}

// nameFromAnswer is captureName for a direct answer to the name
// question. The message is known to be a name attempt, so a longer
// answer is trimmed to its first two words instead of rejected.
func nameFromAnswer(raw string, snap *rulestore.Snapshot) string {
	return pickName(raw, snap, true)
}

func pickName(raw string, snap *rulestore.Snapshot, trim bool) string {
	for _, segment := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		segment = strings.TrimSpace(segment)
		norm := textnorm.Normalize(segment)
		if norm == "" || strings.ContainsAny(norm, "0123456789") {
			continue
		}
		ex := nlp.Extract(segment, snap, "")
		if len(ex.Answered) > 0 || len(ex.Intents) > 0 || len(ex.SkipKeys) > 0 {
			continue
		}

		var kept []string
		for _, word := range strings.Fields(segment) {
			if !nameStopwords[textnorm.Normalize(word)] {
				kept = append(kept, word)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if len(kept) > 2 {
			if !trim {
				continue
			}
			kept = kept[:2]
		}
		return strings.Join(kept, " ")
	}
	return ""
}

func has(keys []entity.FilterKey, key entity.FilterKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
