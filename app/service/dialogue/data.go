package dialogue

import (
	"errors"
	"time"
)

const maxReasonDuration = 60 * time.Second

// ErrGeneration marks a turn that failed because no reply could be generated.
// The session is left exactly as it was before the turn.
var ErrGeneration = errors.New("reply generation failed")

type ResultType string

const (
	ResultAuthRequest ResultType = "auth_request"
	ResultReset       ResultType = "reset"
	ResultSuggestions ResultType = "suggestions"
	ResultResponse    ResultType = "response"
	ResultError       ResultType = "error"
)

// Result is the single message sent back for every incoming turn.
type Result struct {
	Type          ResultType `json:"type"`
	Message       string     `json:"message"`
	Suggestions   []string   `json:"suggestions,omitempty"`
	SelectedTitle string     `json:"selected_title,omitempty"`
	FullRecipe    string     `json:"full_recipe,omitempty"`
}

func ErrorResult(message string) *Result {
	return &Result{
		Type:    ResultError,
		Message: message,
	}
}

type State int

const (
	StateIdle State = iota
	StateAwaitingChoice
)

func (s State) String() string {
	if s == StateAwaitingChoice {
		return "AWAITING_CHOICE"
	}

	return "IDLE"
}

const (
	SentinelTitle = "❌ لا أريد أي من هذه الخيارات"

	NotFoundMarker  = "لم أتمكن من العثور على وصفات مناسبة."
	RejectionMarker = "لم يتم اختيار أي وصفة. يمكنك التحدث بحرية الآن."

	MessageChooseSuggestion = "اختر رقم من الاختيارات التالية:"
	MessageReset            = "✅ تم بدء محادثة جديدة تمامًا."
	MessageNotANumber       = "من فضلك اختر رقم من الاختيارات الموجودة."
	MessageInvalidChoice    = "اختيار غير صالح. حاول رقم تاني."
	MessageTurnFailed       = "حصلت مشكلة مؤقتة، حاول تاني كمان شوية."
)
