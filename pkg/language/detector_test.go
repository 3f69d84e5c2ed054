package language

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayakhq/sahayak/pkg/testutil"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()

	detector, err := NewDetector(context.Background(), testutil.WordEmbedder{})
	require.NoError(t, err)

	return detector
}

func TestDetect_KnownPhrases(t *testing.T) {
	detector := newTestDetector(t)

	cases := map[string]Language{
		"hello i want to apply for a loan": English,
		"मोबाइल नंबर दर्ज करें":            Hindi,
		"ಮೊಬೈಲ್ ಸಂಖ್ಯೆಯನ್ನು ನಮೂದಿಸಿ":      Kannada,
		"मोबाइल क्रमांक प्रविष्ट करा":     Marathi,
		"மொபைல் எண்ணை உள்ளிடவும்":         Tamil,
	}

	for text, want := range cases {
		detected, err := detector.Detect(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, want, detected, "text: %s", text)
	}
}

func TestDetect_EmptyTextIsEnglish(t *testing.T) {
	detector := newTestDetector(t)

	detected, err := detector.Detect(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, English, detected)
}

func TestDetect_NoOverlapFallsBackToEnglish(t *testing.T) {
	detector := newTestDetector(t)

	// A query sharing no words with any corpus phrase scores zero everywhere,
	// which is a tie and therefore English.
	detected, err := detector.Detect(context.Background(), "zzz qqq xxx")
	require.NoError(t, err)
	assert.Equal(t, English, detected)
}
