package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/sahayakhq/sahayak/pkg/language"
	"github.com/sahayakhq/sahayak/pkg/otelhelper"
	"github.com/sahayakhq/sahayak/pkg/models"
	"github.com/sahayakhq/sahayak/pkg/retrieval"
	"github.com/sahayakhq/sahayak/pkg/rewrite"
)

const ragTopK = 3

// ChatTurn is one prior exchange the client replays for context.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the orchestrator-level input for a free-form prompt.
type ChatRequest struct {
	SessionID string
	Prompt    string
	Audio     []byte
	Language  language.Language
	History   []ChatTurn
}

// ChatResponse is the assembled reply for one chat turn. UITags and
// NextActionUITags are always non-nil so clients see an empty list rather
// than null on a retrieval miss.
type ChatResponse struct {
	SessionID           string              `json:"session_id"`
	Response            string              `json:"response"`
	UITags              []*models.Component `json:"ui_tags"`
	NextActionUITags    []*models.Component `json:"next_action_ui_tags"`
	ID                  *string             `json:"id"`
	NextSuccessActionID *string             `json:"next_success_action_id"`
	NextErrActionID     *string             `json:"next_err_action_id"`
	ScreenID            string              `json:"screen_id,omitempty"`
	Title               string              `json:"title,omitempty"`
	DetectedLanguage    string              `json:"detected_language"`
	NLPResponse         string              `json:"nlp_response,omitempty"`
	AudioURL            string              `json:"audio_url,omitempty"`
}

// Chat runs the prompt pipeline: localize inbound, retrieve an action,
// assemble its screen, localize outbound. A retrieval miss falls back to a
// generated answer with no screen.
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "orchestrator.chat",
		attribute.String(otelhelper.SessionIDKey, sessionID))
	defer span.End()

	ingest, err := o.gateway.Ingest(ctx, language.Input{
		Text:     req.Prompt,
		Audio:    req.Audio,
		Declared: req.Language,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to ingest prompt: %w", err)
	}

	span.SetAttributes(attribute.String(otelhelper.LanguageKey, string(ingest.Detected)))

	resp := &ChatResponse{
		SessionID:        sessionID,
		UITags:           []*models.Component{},
		NextActionUITags: []*models.Component{},
		DetectedLanguage: string(ingest.Detected),
	}

	if ingest.EnglishText == "" {
		return o.finishChat(ctx, resp, ingest.Detected,
			"I didn't catch that. Could you say it again?")
	}

	match, err := o.index.BestMatch(ctx, ingest.EnglishText)
	if errors.Is(err, retrieval.ErrNoMatch) {
		return o.chatGenerate(ctx, resp, ingest, req.History)
	}

	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	action, err := o.catalog.Action(match.ActionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve matched action: %w", err)
	}

	o.logger.InfoContext(ctx, "Prompt matched action",
		"session_id", sessionID, "action_id", action.ID, "score", match.Score)
	span.SetAttributes(attribute.String(otelhelper.ActionIDKey, action.ID))

	resp.ID = &action.ID
	resp.NextSuccessActionID = action.NextSuccessActionID
	resp.NextErrActionID = action.NextErrActionID
	resp.Title = action.StageName

	screen, nextScreen := o.chatScreens(ctx, action)

	english := assistantText(action)
	resp.Response = english

	var egress language.EgressResult

	// Outbound localization and identifier rewriting are independent.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, egressErr := o.gateway.Egress(gctx, english, ingest.Detected)
		if egressErr != nil {
			return egressErr
		}

		egress = result

		return nil
	})

	g.Go(func() error {
		ts := o.now()

		if screen != nil {
			rewritten := rewrite.Screen(screen, ts)
			resp.UITags = rewritten.UIComponents
			resp.ScreenID = rewritten.ScreenID
		}

		if nextScreen != nil {
			resp.NextActionUITags = rewrite.Screen(nextScreen, ts).UIComponents
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to assemble response: %w", err)
	}

	resp.NLPResponse = egress.Text
	resp.AudioURL = egress.AudioURL

	state := o.loadState(ctx, sessionID)
	state.Language = string(ingest.Detected)
	state.LastActionID = action.ID
	o.saveState(ctx, state)

	return resp, nil
}

// chatScreens resolves the screen to render plus the successor's screen. A
// pure backend action has no screen of its own; its successor's screen is
// promoted in that case.
func (o *Orchestrator) chatScreens(ctx context.Context, action *models.Action) (*models.UIScreen, *models.UIScreen) {
	screenAction := action

	if action.Kind() == models.KindAPIExecution && action.NextSuccessActionID != nil {
		successor, err := o.catalog.Action(*action.NextSuccessActionID)
		if err == nil && successor.UIID != nil {
			screenAction = successor
		}
	}

	var screen *models.UIScreen

	if screenAction.UIID != nil {
		resolved, err := o.catalog.UI(*screenAction.UIID)
		if err != nil {
			o.logger.WarnContext(ctx, "Dropping unresolved screen reference",
				"action_id", screenAction.ID, "ui_id", *screenAction.UIID)
		} else {
			screen = resolved
		}
	}

	var nextScreen *models.UIScreen

	if screenAction.NextSuccessActionID != nil {
		successor, err := o.catalog.Action(*screenAction.NextSuccessActionID)
		if err == nil && successor.UIID != nil {
			resolved, uiErr := o.catalog.UI(*successor.UIID)
			if uiErr == nil {
				nextScreen = resolved
			}
		}
	}

	return screen, nextScreen
}

// chatGenerate answers a prompt no catalog action covers. The top retrieval
// candidates become grounding context for the generator.
func (o *Orchestrator) chatGenerate(ctx context.Context, resp *ChatResponse, ingest language.IngestResult, history []ChatTurn) (*ChatResponse, error) {
	if o.generator == nil {
		return o.finishChat(ctx, resp, ingest.Detected,
			"I can only help with the loan onboarding steps right now.")
	}

	var contextDocs []string

	matches, err := o.index.Search(ctx, ingest.EnglishText, ragTopK)
	if err == nil {
		for _, match := range matches {
			if action, actionErr := o.catalog.Action(match.ActionID); actionErr == nil {
				contextDocs = append(contextDocs, action.Description)
			}
		}
	}

	for _, turn := range history {
		contextDocs = append(contextDocs, turn.Role+": "+turn.Content)
	}

	answer, err := o.generator.Generate(ctx, ingest.EnglishText, contextDocs)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	o.logger.InfoContext(ctx, "Prompt answered by generation",
		"session_id", resp.SessionID)

	return o.finishChat(ctx, resp, ingest.Detected, answer)
}

// finishChat localizes the English text and persists the session for replies
// that carry no screen.
func (o *Orchestrator) finishChat(ctx context.Context, resp *ChatResponse, detected language.Language, english string) (*ChatResponse, error) {
	resp.Response = english

	egress, err := o.gateway.Egress(ctx, english, detected)
	if err != nil {
		return nil, fmt.Errorf("failed to localize reply: %w", err)
	}

	resp.NLPResponse = egress.Text
	resp.AudioURL = egress.AudioURL

	state := o.loadState(ctx, resp.SessionID)
	state.Language = string(detected)
	o.saveState(ctx, state)

	return resp, nil
}

func assistantText(action *models.Action) string {
	if action.StageName != "" {
		return fmt.Sprintf("Let's continue with %s.", action.StageName)
	}

	return action.Description
}
