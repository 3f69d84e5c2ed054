// Package web provides the HTTP surface of the onboarding dialog service.
package web

import (
	"github.com/sahayakhq/sahayak/pkg/models"
	"github.com/sahayakhq/sahayak/pkg/orchestrator"
)

const (
	// RequestTypePrompt marks a free-form text or audio turn.
	RequestTypePrompt = "PROMPT"
	// RequestTypeFormData marks a filled form delegated to the submit pipeline.
	RequestTypeFormData = "FORM_DATA"
)

// KeyValue is one submitted form field.
type KeyValue struct {
	Key   string `json:"key"   validate:"required"`
	Value any    `json:"value"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Prompt      string                   `json:"prompt,omitempty"`
	AudioURL    string                   `json:"audio_url,omitempty"`
	SessionID   string                   `json:"session_id,omitempty"`
	Type        string                   `json:"type"                   validate:"required,oneof=PROMPT FORM_DATA"`
	Language    string                   `json:"language,omitempty"`
	ActionID    string                   `json:"action_id,omitempty"`
	Data        []KeyValue               `json:"data,omitempty"         validate:"omitempty,dive"`
	ChatHistory []orchestrator.ChatTurn  `json:"chat_history,omitempty"`
}

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	SessionID string     `json:"session_id,omitempty"`
	ActionID  string     `json:"action_id"            validate:"required"`
	Data      []KeyValue `json:"data"                 validate:"omitempty,dive"`
}

// SignedURLRequest is the body of POST /get-signed-url.
type SignedURLRequest struct {
	ObjectKey string `json:"object_key" validate:"required"`
}

// SignedURLResponse is the reply of POST /get-signed-url.
type SignedURLResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// UploadImagesResponse is the reply of POST /upload-images.
type UploadImagesResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	ImageIDs []string `json:"image_ids"`
	Errors   []string `json:"errors"`
}

func (kvs KeyValue) toModel() models.KeyValuePair {
	return models.KeyValuePair{Key: kvs.Key, Value: kvs.Value}
}

func toModelPairs(data []KeyValue) []models.KeyValuePair {
	pairs := make([]models.KeyValuePair, len(data))
	for i, kv := range data {
		pairs[i] = kv.toModel()
	}

	return pairs
}
