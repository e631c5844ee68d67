package usecase

import (
	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// NextQuestion picks the question to ask next: the first one in sheet
// order whose key is neither answered nor skipped. preferKey jumps the
// queue when set (objection redirect) but only while that key is still
// open. The name question never re-fires once a name is on file.
func NextQuestion(filters entity.FilterSet, name string, preferKey entity.FilterKey, snap *rulestore.Snapshot) (entity.Question, bool) {
	open := func(q entity.Question) bool {
		if q.Key == entity.KeyName {
			return name == "" && !filters.IsSkipped(q.Key)
		}
		return !filters.Has(q.Key) && !filters.IsSkipped(q.Key)
	}

	if preferKey != "" {
		for _, q := range snap.Questions {
			if q.Key == preferKey && open(q) {
				return q, true
			}
		}
	}
	for _, q := range snap.Questions {
		if open(q) {
			return q, true
		}
	}
	return entity.Question{}, false
}
