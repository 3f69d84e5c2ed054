// Package models defines the core domain records for the onboarding dialog workflow.
package models

// ActionType tags an action with the kind of onboarding step it represents.
type ActionType string

const (
	ActionTypeWelcomeScreen        ActionType = "WELCOME_SCREEN"
	ActionTypeFlowSelectionScreen  ActionType = "FLOW_SELECTION_SCREEN"
	ActionTypeLoginScreen          ActionType = "LOGIN_SCREEN"
	ActionTypeUserDetailsScreen    ActionType = "USER_DETAILS_SCREEN"
	ActionTypeMobileVerification   ActionType = "MOBILE_VERIFICATION_SCREEN"
	ActionTypeOTPVerification      ActionType = "OTP_VERIFICATION_SCREEN"
	ActionTypeImageCaptureScreen   ActionType = "IMAGE_CAPTURE_SCREEN"
	ActionTypeDocumentUploadScreen ActionType = "DOCUMENT_UPLOAD_SCREEN"
	ActionTypeCompletionScreen     ActionType = "COMPLETION_SCREEN"
	ActionTypeAPIExecution         ActionType = "API_EXECUTION"
)

// ActionKind is the closed set of variants an action can take. The kind is
// derived from which references are set rather than from the string tag, so
// dispatch never depends on catalog authors keeping action_type consistent.
type ActionKind int

const (
	// KindUserScreen renders a UI screen and waits for a submission.
	KindUserScreen ActionKind = iota
	// KindAPIExecution is a pure backend step with no screen of its own.
	KindAPIExecution
	// KindComposite renders a screen and dispatches an outbound call on submit.
	KindComposite
)

// Action is one named step of the onboarding workflow graph. Successors are
// referenced by id, never by pointer, so the in-memory graph stays acyclic
// even when the logical graph loops.
type Action struct {
	ID                  string     `json:"id"                               validate:"required"`
	StageName           string     `json:"stage_name"`
	Description         string     `json:"description"                      validate:"required"`
	ActionType          ActionType `json:"action_type"                      validate:"required"`
	NextSuccessActionID *string    `json:"next_success_action_id,omitempty"`
	NextErrActionID     *string    `json:"next_err_action_id,omitempty"`
	UIID                *string    `json:"ui_id,omitempty"`
	APIDetailID         *string    `json:"api_detail_id,omitempty"`
}

// Kind reports the variant of the action based on its references.
func (a *Action) Kind() ActionKind {
	switch {
	case a.UIID == nil:
		return KindAPIExecution
	case a.APIDetailID != nil:
		return KindComposite
	default:
		return KindUserScreen
	}
}

// Terminal reports whether the action has no success successor.
func (a *Action) Terminal() bool {
	return a.NextSuccessActionID == nil
}
