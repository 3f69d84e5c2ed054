// Package language localizes the dialog around the English-only retrieval
// core: it detects the input language, transcribes audio, and translates and
// synthesizes replies through external collaborators.
package language

import "fmt"

// Language identifies one of the supported conversation languages.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Kannada Language = "kannada"
	Marathi Language = "marathi"
	Tamil   Language = "tamil"
)

// Supported lists every language the gateway handles, English first.
func Supported() []Language {
	return []Language{English, Hindi, Kannada, Marathi, Tamil}
}

// Code returns the ISO 639-1 code used on the wire with the translation and
// speech collaborators.
func (l Language) Code() string {
	switch l {
	case Hindi:
		return "hi"
	case Kannada:
		return "kn"
	case Marathi:
		return "mr"
	case Tamil:
		return "ta"
	default:
		return "en"
	}
}

// Parse maps a client-declared language name to a Language. Empty or "auto"
// means the caller wants detection.
func Parse(name string) (Language, error) {
	switch Language(name) {
	case English, Hindi, Kannada, Marathi, Tamil:
		return Language(name), nil
	case "", "auto":
		return "", nil
	}

	return "", fmt.Errorf("unsupported language %q", name)
}
