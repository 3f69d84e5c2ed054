package language

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayakhq/sahayak/pkg/testutil"
)

type stubTranscriber struct {
	text  string
	err   error
	calls int
	lang  Language
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte, lang Language) (string, error) {
	s.calls++
	s.lang = lang

	return s.text, s.err
}

type translateCall struct {
	text   string
	source Language
	target Language
}

type stubTranslator struct {
	result string
	err    error
	calls  []translateCall
}

func (s *stubTranslator) Translate(_ context.Context, text string, source, target Language) (string, error) {
	s.calls = append(s.calls, translateCall{text: text, source: source, target: target})

	if s.err != nil {
		return "", s.err
	}

	return s.result, nil
}

type stubSynthesizer struct {
	audio []byte
	err   error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string, _ Language) ([]byte, error) {
	return s.audio, s.err
}

type stubAudioStore struct {
	keys []string
	data map[string][]byte
}

func (s *stubAudioStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if s.data == nil {
		s.data = map[string][]byte{}
	}

	s.keys = append(s.keys, key)
	s.data[key] = data

	return nil
}

func (s *stubAudioStore) URL(_ context.Context, key string) (string, error) {
	return "https://store.example/" + key, nil
}

func newTestGateway(t *testing.T, transcriber Transcriber, translator Translator,
	synthesizer Synthesizer, audio AudioStore) *Gateway {
	t.Helper()

	detector, err := NewDetector(context.Background(), testutil.WordEmbedder{})
	require.NoError(t, err)

	return NewGateway(detector, transcriber, translator, synthesizer, audio, slog.Default())
}

func TestIngest_EnglishTextSkipsTranslator(t *testing.T) {
	translator := &stubTranslator{result: "should not be used"}
	gw := newTestGateway(t, nil, translator, nil, nil)

	result, err := gw.Ingest(context.Background(), Input{Text: "hello i want to apply for a loan"})
	require.NoError(t, err)

	assert.Equal(t, English, result.Detected)
	assert.Equal(t, "hello i want to apply for a loan", result.EnglishText)
	assert.Empty(t, translator.calls)
}

func TestIngest_HindiTextIsTranslated(t *testing.T) {
	translator := &stubTranslator{result: "enter the mobile number"}
	gw := newTestGateway(t, nil, translator, nil, nil)

	result, err := gw.Ingest(context.Background(), Input{Text: "मोबाइल नंबर दर्ज करें"})
	require.NoError(t, err)

	assert.Equal(t, Hindi, result.Detected)
	assert.Equal(t, "enter the mobile number", result.EnglishText)

	require.Len(t, translator.calls, 1)
	assert.Equal(t, Hindi, translator.calls[0].source)
	assert.Equal(t, English, translator.calls[0].target)
}

func TestIngest_DeclaredLanguageSkipsDetection(t *testing.T) {
	translator := &stubTranslator{result: "upload the documents"}
	gw := newTestGateway(t, nil, translator, nil, nil)

	result, err := gw.Ingest(context.Background(), Input{Text: "anything at all", Declared: Tamil})
	require.NoError(t, err)

	assert.Equal(t, Tamil, result.Detected)
	require.Len(t, translator.calls, 1)
	assert.Equal(t, Tamil, translator.calls[0].source)
}

func TestIngest_AudioIsTranscribedFirst(t *testing.T) {
	transcriber := &stubTranscriber{text: "मोबाइल नंबर दर्ज करें"}
	translator := &stubTranslator{result: "enter the mobile number"}
	gw := newTestGateway(t, transcriber, translator, nil, nil)

	result, err := gw.Ingest(context.Background(), Input{Audio: []byte{0x01}, Declared: Hindi})
	require.NoError(t, err)

	assert.Equal(t, 1, transcriber.calls)
	assert.Equal(t, Hindi, transcriber.lang)
	assert.Equal(t, "enter the mobile number", result.EnglishText)
}

func TestIngest_EmptyTranscriptionIsEnglishEmpty(t *testing.T) {
	transcriber := &stubTranscriber{text: ""}
	gw := newTestGateway(t, transcriber, &stubTranslator{}, nil, nil)

	result, err := gw.Ingest(context.Background(), Input{Audio: []byte{0x01}})
	require.NoError(t, err)

	assert.Equal(t, English, result.Detected)
	assert.Empty(t, result.EnglishText)
}

func TestIngest_TranslationFailureFallsBack(t *testing.T) {
	translator := &stubTranslator{err: errors.New("translator down")}
	gw := newTestGateway(t, nil, translator, nil, nil)

	result, err := gw.Ingest(context.Background(), Input{Text: "मोबाइल नंबर दर्ज करें"})
	require.NoError(t, err)

	assert.Equal(t, Hindi, result.Detected)
	assert.Equal(t, "मोबाइल नंबर दर्ज करें", result.EnglishText)
}

func TestEgress_EnglishPassesThrough(t *testing.T) {
	translator := &stubTranslator{result: "should not be used"}
	store := &stubAudioStore{}
	gw := newTestGateway(t, nil, translator, &stubSynthesizer{audio: []byte{0x02}}, store)

	result, err := gw.Egress(context.Background(), "please enter your mobile number", English)
	require.NoError(t, err)

	assert.Equal(t, "please enter your mobile number", result.Text)
	assert.Empty(t, translator.calls)
	assert.NotEmpty(t, result.AudioURL)
}

func TestEgress_TranslatesAndStoresAudio(t *testing.T) {
	translator := &stubTranslator{result: "मोबाइल नंबर दर्ज करें"}
	store := &stubAudioStore{}
	gw := newTestGateway(t, nil, translator, &stubSynthesizer{audio: []byte{0x02}}, store)

	result, err := gw.Egress(context.Background(), "enter the mobile number", Hindi)
	require.NoError(t, err)

	assert.Equal(t, "मोबाइल नंबर दर्ज करें", result.Text)
	require.Len(t, store.keys, 1)
	assert.Contains(t, store.keys[0], "tts/hi/")
	assert.Equal(t, "https://store.example/"+store.keys[0], result.AudioURL)
}

func TestEgress_StableAudioPath(t *testing.T) {
	translator := &stubTranslator{result: "मोबाइल नंबर दर्ज करें"}
	store := &stubAudioStore{}
	gw := newTestGateway(t, nil, translator, &stubSynthesizer{audio: []byte{0x02}}, store)

	_, err := gw.Egress(context.Background(), "enter the mobile number", Hindi)
	require.NoError(t, err)
	_, err = gw.Egress(context.Background(), "enter the mobile number", Hindi)
	require.NoError(t, err)

	require.Len(t, store.keys, 2)
	assert.Equal(t, store.keys[0], store.keys[1])
}

func TestEgress_SynthesisFailureReturnsEmptyURL(t *testing.T) {
	gw := newTestGateway(t, nil, &stubTranslator{}, &stubSynthesizer{err: errors.New("tts down")}, &stubAudioStore{})

	result, err := gw.Egress(context.Background(), "hello", English)
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Text)
	assert.Empty(t, result.AudioURL)
}
