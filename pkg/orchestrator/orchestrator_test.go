package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sahayakhq/sahayak/pkg/catalog"
	"github.com/sahayakhq/sahayak/pkg/dispatch"
	"github.com/sahayakhq/sahayak/pkg/language"
	"github.com/sahayakhq/sahayak/pkg/retrieval"
	"github.com/sahayakhq/sahayak/pkg/session"
	"github.com/sahayakhq/sahayak/pkg/testutil"
)

// The bag-of-words test embedder hashes words into 64 buckets, so unrelated
// texts pick up collision noise of up to ~0.27 while prompts sharing real
// vocabulary with a description score 0.5+. The threshold sits between the
// two bands.
const testMinScore = 0.40

const testTimestamp = int64(1700000000)

type fakeTranslator struct {
	toEnglish map[string]string
	toLocal   map[string]string
	calls     int
}

func (f *fakeTranslator) Translate(_ context.Context, text string, _, target language.Language) (string, error) {
	f.calls++

	table := f.toLocal
	if target == language.English {
		table = f.toEnglish
	}

	if translated, ok := table[text]; ok {
		return translated, nil
	}

	return text, nil
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(_ context.Context, _ string, _ language.Language) ([]byte, error) {
	return []byte{0x49, 0x44, 0x33}, nil
}

type fakeAudioStore struct{}

func (fakeAudioStore) Put(_ context.Context, _ string, _ []byte, _ string) error {
	return nil
}

func (fakeAudioStore) URL(_ context.Context, key string) (string, error) {
	return "https://store.example/" + key, nil
}

type fakeGenerator struct {
	text    string
	rawJSON string
	calls   int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, _ []string) (string, error) {
	f.calls++

	return f.text, nil
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, _ string, _ any) (json.RawMessage, error) {
	f.calls++

	return json.RawMessage(f.rawJSON), nil
}

type testHarness struct {
	orchestrator *Orchestrator
	translator   *fakeTranslator
	generator    *fakeGenerator
	sessions     *session.MemoryStore
}

func newHarness(t *testing.T, server *httptest.Server) *testHarness {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	logger := slog.Default()

	index, err := retrieval.NewIndex(context.Background(), testutil.WordEmbedder{}, cat.Actions(),
		logger, retrieval.WithMinScore(testMinScore))
	require.NoError(t, err)

	detector, err := language.NewDetector(context.Background(), testutil.WordEmbedder{})
	require.NoError(t, err)

	translator := &fakeTranslator{
		toEnglish: map[string]string{
			"मोबाइल नंबर दर्ज करें": "enter the mobile number",
		},
		toLocal: map[string]string{
			"Let's continue with Mobile Verification.": "मोबाइल सत्यापन जारी रखें।",
		},
	}

	gateway := language.NewGateway(detector, nil, translator, fakeSynthesizer{}, fakeAudioStore{}, logger)

	var dispatcher *dispatch.Dispatcher
	if server != nil {
		dispatcher = dispatch.NewDispatcher(server.URL, logger)
	}

	generator := &fakeGenerator{text: "The assistant helps with loan onboarding only."}
	sessions := session.NewMemoryStore()

	o := New(Config{
		Catalog:    cat,
		Index:      index,
		Gateway:    gateway,
		Generator:  generator,
		Dispatcher: dispatcher,
		Sessions:   sessions,
		Logger:     logger,
	}, WithTimestampFunc(func() int64 { return testTimestamp }))

	return &testHarness{
		orchestrator: o,
		translator:   translator,
		generator:    generator,
		sessions:     sessions,
	}
}
