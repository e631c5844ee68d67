package entity

// ActionKind outbound action variant emitted by the dialogue engine.
type ActionKind string

const (
	ActionAskQuestion    ActionKind = "ask_question"
	ActionRunSearch      ActionKind = "run_search"
	ActionRequestContact ActionKind = "request_contact"
	ActionRecordViewing  ActionKind = "record_viewing"
	ActionRespond        ActionKind = "respond"
	ActionNoOp           ActionKind = "noop"
)

// OutboundAction the single result of one processed turn. The engine
// never performs I/O itself; the delivery layer executes the action.
type OutboundAction struct {
	Kind ActionKind

	// QuestionKey set for ActionAskQuestion
	QuestionKey FilterKey

	// Text prompt / reply body for ActionAskQuestion, ActionRequestContact
	// and ActionRespond
	Text string

	// Reply canned objection/reaction reply sent before the main action
	// when the utterance matched a reply sheet and still carried answers
	Reply string

	// Filters snapshot for ActionRunSearch and ActionRecordViewing
	Filters FilterSet

	// Offset search paging position for ActionRunSearch
	Offset int

	// Contact captured phone number for ActionRecordViewing
	Contact string

	// ListingIDs listings last shown, for ActionRecordViewing
	ListingIDs []int

	// Warnings soft diagnostics (ambiguous synonyms etc.) for the caller
	// to log; never shown to the user
	Warnings []string
}

// Respond shorthand constructor.
func Respond(text string) OutboundAction {
	return OutboundAction{Kind: ActionRespond, Text: text}
}

// NoOp shorthand constructor.
func NoOp() OutboundAction {
	return OutboundAction{Kind: ActionNoOp}
}
