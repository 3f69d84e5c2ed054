package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayakhq/sahayak/pkg/language"
	"github.com/sahayakhq/sahayak/pkg/models"
)

// greetingPrompt shares enough vocabulary with the welcome description to
// clear the retrieval threshold under the bag-of-words test embedder.
const greetingPrompt = "Namaste, good morning, start onboarding a new customer"

func TestChat_GreetingResolvesWelcomeScreen(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.orchestrator.Chat(context.Background(), ChatRequest{Prompt: greetingPrompt})
	require.NoError(t, err)

	require.NotNil(t, resp.ID)
	assert.Equal(t, "welcome", *resp.ID)
	require.NotNil(t, resp.NextSuccessActionID)
	assert.Equal(t, "select-flow", *resp.NextSuccessActionID)
	assert.Equal(t, "Welcome", resp.Title)
	assert.NotEmpty(t, resp.SessionID)

	rewrittenID := regexp.MustCompile(fmt.Sprintf(`^proceed_button\$%d$`, testTimestamp))
	found := false

	screen := &models.UIScreen{UIComponents: resp.UITags}
	screen.Walk(func(c *models.Component) {
		if c.ComponentType == models.ComponentTypeButton && rewrittenID.MatchString(c.ID) {
			found = true
		}
	})
	assert.True(t, found, "expected a button rewritten from proceed_button")
}

func TestChat_EveryComponentIDSharesTheTimestamp(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.orchestrator.Chat(context.Background(), ChatRequest{Prompt: greetingPrompt})
	require.NoError(t, err)
	require.NotEmpty(t, resp.UITags)

	suffix := fmt.Sprintf("$%d", testTimestamp)

	for _, screen := range [][]*models.Component{resp.UITags, resp.NextActionUITags} {
		tree := &models.UIScreen{UIComponents: screen}
		tree.Walk(func(c *models.Component) {
			assert.Equal(t, 1, strings.Count(c.ID, "$"), "id %s", c.ID)
			assert.True(t, strings.HasSuffix(c.ID, suffix), "id %s", c.ID)
		})
	}
}

func TestChat_HindiRoundTrip(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.orchestrator.Chat(context.Background(), ChatRequest{Prompt: "मोबाइल नंबर दर्ज करें"})
	require.NoError(t, err)

	assert.Equal(t, "hindi", resp.DetectedLanguage)
	require.NotNil(t, resp.ID)
	assert.Equal(t, "mobile-verification", *resp.ID)
	assert.Contains(t, strings.ToLower(resp.Response), "mobile")
	assert.Equal(t, "मोबाइल सत्यापन जारी रखें।", resp.NLPResponse)
	assert.NotEmpty(t, resp.AudioURL)

	// One inbound and one outbound translation, never more.
	assert.Equal(t, 2, h.translator.calls)
}

func TestChat_EnglishNeverEntersTranslator(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.orchestrator.Chat(context.Background(), ChatRequest{Prompt: greetingPrompt})
	require.NoError(t, err)

	assert.Zero(t, h.translator.calls)
}

func TestChat_RetrievalMissFallsBackToGeneration(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.orchestrator.Chat(context.Background(), ChatRequest{
		Prompt:   "weather forecast Mumbai",
		Language: language.English,
	})
	require.NoError(t, err)

	assert.Nil(t, resp.ID)
	assert.Empty(t, resp.UITags)
	assert.NotNil(t, resp.UITags)
	assert.Equal(t, "The assistant helps with loan onboarding only.", resp.Response)
	assert.Equal(t, 1, h.generator.calls)
}

func TestChat_ReusesProvidedSessionID(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.orchestrator.Chat(context.Background(), ChatRequest{
		SessionID: "existing-session",
		Prompt:    greetingPrompt,
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-session", resp.SessionID)

	stored, err := h.sessions.Get(context.Background(), "existing-session")
	require.NoError(t, err)
	assert.Contains(t, string(stored), `"last_action_id":"welcome"`)
}

func TestChat_PureBackendActionPromotesSuccessorScreen(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.orchestrator.Chat(context.Background(), ChatRequest{
		Prompt: "send the completed application to the loan origination system",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ID)
	assert.Equal(t, "submit-application", *resp.ID)

	// The action itself has no screen; the completion screen stands in.
	require.NotEmpty(t, resp.UITags)
	assert.Equal(t, "application-complete", resp.ScreenID)
}
