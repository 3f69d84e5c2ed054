package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sahayakhq/sahayak/pkg/models"
	"github.com/sahayakhq/sahayak/pkg/otelhelper"
	"github.com/sahayakhq/sahayak/pkg/rewrite"
)

// SubmitRequest carries a filled form back from the client.
type SubmitRequest struct {
	SessionID string
	ActionID  string
	Data      []models.KeyValuePair
}

// SubmitResponse reports the outcome plus the screens to render next. All
// slices are non-nil so clients always see lists.
type SubmitResponse struct {
	SessionID              string             `json:"session_id"`
	Status                 string             `json:"status"`
	Message                string             `json:"message"`
	Errors                 []string           `json:"errors"`
	UIData                 []*models.UIScreen `json:"ui_data"`
	NextActionUIComponents []*models.UIScreen `json:"next_action_ui_components"`
}

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// submitFallbackPrompt asks the model to recover screen and endpoint ids
// when the catalog's successor chain cannot resolve them directly.
const submitFallbackPrompt = `You route steps of a loan onboarding workflow.
Given the current action and candidate actions from the catalog, return a JSON
object {"ui_id": string, "next_ui_id": string, "api_detail_id": string} naming
the screen for the current action, the screen that follows it, and the API
descriptor to call. Use only ids present in the candidates. Use empty strings
for anything you cannot determine.`

// Submit runs the form pipeline: resolve the current and successor screens,
// bind the submitted values, dispatch the action's API call, and return the
// rewritten screens. A failed dispatch reports the rendered payload back and
// renders the error successor's screen instead.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "orchestrator.submit",
		attribute.String(otelhelper.ActionIDKey, req.ActionID))
	defer span.End()

	action, err := o.catalog.Action(req.ActionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to resolve action %s: %w", req.ActionID, err)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp := &SubmitResponse{
		SessionID:              sessionID,
		Errors:                 []string{},
		UIData:                 []*models.UIScreen{},
		NextActionUIComponents: []*models.UIScreen{},
	}

	current, next := o.resolveScreens(ctx, action)
	bindings := bindingsFrom(req.Data)
	ts := o.now()

	if action.APIDetailID != nil && o.dispatcher != nil {
		endpoint, apiErr := o.catalog.API(*action.APIDetailID)
		if apiErr != nil {
			return nil, fmt.Errorf("failed to resolve api endpoint: %w", apiErr)
		}

		result, dispatchErr := o.dispatcher.Execute(ctx, endpoint, bindings)
		if dispatchErr != nil {
			otelhelper.SetError(span, dispatchErr,
				attribute.String(otelhelper.EndpointKey, endpoint.ID))
			o.logger.WarnContext(ctx, "Outbound dispatch failed",
				"session_id", sessionID, "action_id", action.ID, "error", dispatchErr)

			resp.Status = statusFailure
			resp.Message = fmt.Sprintf("Submission for %s failed: %v", action.ID, dispatchErr)
			resp.Errors = append(resp.Errors, dispatchErr.Error())

			if result != nil && result.Payload != nil {
				if payload, encodeErr := json.Marshal(result.Payload); encodeErr == nil {
					resp.Errors = append(resp.Errors, "submitted payload: "+string(payload))
				}
			}

			if errScreen := o.errorScreen(action, current); errScreen != nil {
				resp.UIData = append(resp.UIData, rewrite.Screen(errScreen, ts))
			}

			return resp, nil
		}
	}

	resp.Status = statusSuccess
	resp.Message = fmt.Sprintf("Submission for %s accepted.", action.ID)

	if current != nil {
		resp.UIData = append(resp.UIData, rewrite.Screen(current, ts))
	}

	if next != nil {
		resp.NextActionUIComponents = append(resp.NextActionUIComponents, rewrite.Screen(next, ts))
	}

	// Session state merges only after a successful dispatch.
	state := o.loadState(ctx, sessionID)
	state.LastActionID = action.ID

	if state.Values == nil {
		state.Values = make(map[string]any, len(bindings))
	}

	for key, value := range bindings {
		state.Values[key] = value
	}

	o.saveState(ctx, state)

	return resp, nil
}

// bindingsFrom strips the timestamp suffix from each submitted key. Duplicate
// base keys are last-wins.
func bindingsFrom(data []models.KeyValuePair) map[string]any {
	bindings := make(map[string]any, len(data))

	for _, kv := range data {
		bindings[rewrite.BaseKey(kv.Key)] = kv.Value
	}

	return bindings
}

// resolveScreens tries the catalog successor chain first and falls back to
// the generator only when that chain cannot produce both screens.
func (o *Orchestrator) resolveScreens(ctx context.Context, action *models.Action) (*models.UIScreen, *models.UIScreen) {
	var current, next *models.UIScreen

	if action.UIID != nil {
		current, _ = o.catalog.UI(*action.UIID)
	}

	if action.NextSuccessActionID != nil {
		if successor, err := o.catalog.Action(*action.NextSuccessActionID); err == nil && successor.UIID != nil {
			next, _ = o.catalog.UI(*successor.UIID)
		}
	}

	// Terminal actions legitimately have no successor screen.
	if current != nil && (next != nil || action.Terminal()) {
		return current, next
	}

	return o.recoverScreens(ctx, action, current, next)
}

// recoverScreens asks the generator for the missing screen ids and validates
// every returned id against the catalog, dropping anything it does not know.
func (o *Orchestrator) recoverScreens(ctx context.Context, action *models.Action, current, next *models.UIScreen) (*models.UIScreen, *models.UIScreen) {
	if o.generator == nil {
		return current, next
	}

	query := strings.ReplaceAll(action.ID, "-", " ")

	type candidate struct {
		ActionID            string  `json:"action_id"`
		UIID                *string `json:"ui_id,omitempty"`
		NextSuccessActionID *string `json:"next_success_action_id,omitempty"`
		APIDetailID         *string `json:"api_detail_id,omitempty"`
	}

	input := struct {
		ActionID   string      `json:"action_id"`
		Candidates []candidate `json:"candidates"`
	}{ActionID: action.ID}

	if matches, err := o.index.Search(ctx, query, ragTopK); err == nil {
		for _, match := range matches {
			if matched, actionErr := o.catalog.Action(match.ActionID); actionErr == nil {
				input.Candidates = append(input.Candidates, candidate{
					ActionID:            matched.ID,
					UIID:                matched.UIID,
					NextSuccessActionID: matched.NextSuccessActionID,
					APIDetailID:         matched.APIDetailID,
				})
			}
		}
	}

	raw, err := o.generator.GenerateJSON(ctx, submitFallbackPrompt, input)
	if err != nil {
		o.logger.WarnContext(ctx, "Screen recovery generation failed",
			"action_id", action.ID, "error", err)

		return current, next
	}

	var recovered struct {
		UIID        string `json:"ui_id"`
		NextUIID    string `json:"next_ui_id"`
		APIDetailID string `json:"api_detail_id"`
	}

	if err := json.Unmarshal(raw, &recovered); err != nil {
		o.logger.WarnContext(ctx, "Screen recovery returned invalid JSON",
			"action_id", action.ID, "error", err)

		return current, next
	}

	if current == nil && recovered.UIID != "" {
		if screen, uiErr := o.catalog.UI(recovered.UIID); uiErr == nil {
			current = screen
		} else {
			o.logger.WarnContext(ctx, "Dropping unknown recovered screen id",
				"ui_id", recovered.UIID)
		}
	}

	if next == nil && recovered.NextUIID != "" {
		if screen, uiErr := o.catalog.UI(recovered.NextUIID); uiErr == nil {
			next = screen
		} else {
			o.logger.WarnContext(ctx, "Dropping unknown recovered screen id",
				"ui_id", recovered.NextUIID)
		}
	}

	return current, next
}

// errorScreen resolves the screen to re-render after a failed dispatch by
// following the action's error successor. A self-loop lands back on the
// current screen.
func (o *Orchestrator) errorScreen(action *models.Action, current *models.UIScreen) *models.UIScreen {
	if action.NextErrActionID == nil {
		return current
	}

	errAction, err := o.catalog.Action(*action.NextErrActionID)
	if err != nil || errAction.UIID == nil {
		return current
	}

	screen, err := o.catalog.UI(*errAction.UIID)
	if err != nil {
		return current
	}

	return screen
}
