package nlp

import (
	"strings"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// MatchObjection returns the first objection whose trigger occurs in
// the utterance. Triggers are authored phrases matched as substrings of
// the lowercased text, the way the reply sheets are written.
func MatchObjection(text string, snap *rulestore.Snapshot) (entity.ObjectionRule, bool) {
	lower := strings.ToLower(text)
	for _, rule := range snap.Objections {
		if strings.Contains(lower, rule.Trigger) {
			return rule, true
		}
	}
	return entity.ObjectionRule{}, false
}

// MatchReaction returns the first reaction whose trigger occurs in the
// utterance. The reserved "silence" trigger is never matched from text;
// the silence monitor looks it up directly via Snapshot.Reaction.
func MatchReaction(text string, snap *rulestore.Snapshot) (entity.ReactionRule, bool) {
	lower := strings.ToLower(text)
	for _, rule := range snap.Reactions {
		if rule.Trigger == "silence" {
			continue
		}
		if strings.Contains(lower, rule.Trigger) {
			return rule, true
		}
	}
	return entity.ReactionRule{}, false
}
