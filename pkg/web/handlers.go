package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/sahayakhq/sahayak/pkg/catalog"
	"github.com/sahayakhq/sahayak/pkg/language"
	"github.com/sahayakhq/sahayak/pkg/orchestrator"
)

// ObjectStore is the slice of the object store the handlers need.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	URL(ctx context.Context, key string) (string, error)
}

type APIHandlers struct {
	orchestrator *orchestrator.Orchestrator
	store        ObjectStore
	validator    *validator.Validate
	logger       *slog.Logger
}

func NewAPIHandlers(o *orchestrator.Orchestrator, store ObjectStore, validate *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		orchestrator: o,
		store:        store,
		validator:    validate,
		logger:       logger.With("module", "web"),
	}
}

// Chat handles POST /chat. PROMPT turns run the dialog pipeline; FORM_DATA
// turns delegate to the submit pipeline.
func (h *APIHandlers) Chat(c fiber.Ctx) error {
	var req ChatRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Type == RequestTypeFormData {
		if req.ActionID == "" {
			return badRequest(c, "action_id is required for FORM_DATA requests")
		}

		return h.submit(c, SubmitRequest{
			SessionID: req.SessionID,
			ActionID:  req.ActionID,
			Data:      req.Data,
		})
	}

	if req.Prompt == "" && req.AudioURL == "" {
		return badRequest(c, "prompt or audio_url is required for PROMPT requests")
	}

	declared, err := language.Parse(req.Language)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var audio []byte

	if req.AudioURL != "" {
		audio, err = h.store.Get(c.Context(), req.AudioURL)
		if err != nil {
			return badRequest(c, "audio object could not be read: "+req.AudioURL)
		}
	}

	resp, err := h.orchestrator.Chat(c.Context(), orchestrator.ChatRequest{
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
		Audio:     audio,
		Language:  declared,
		History:   req.ChatHistory,
	})
	if err != nil {
		h.logger.ErrorContext(c.Context(), "Chat pipeline failed",
			"session_id", req.SessionID, "error", err)

		return chatFailure(c, req.SessionID)
	}

	return c.JSON(resp)
}

// Submit handles POST /submit.
func (h *APIHandlers) Submit(c fiber.Ctx) error {
	var req SubmitRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	return h.submit(c, req)
}

func (h *APIHandlers) submit(c fiber.Ctx, req SubmitRequest) error {
	resp, err := h.orchestrator.Submit(c.Context(), orchestrator.SubmitRequest{
		SessionID: req.SessionID,
		ActionID:  req.ActionID,
		Data:      toModelPairs(req.Data),
	})
	if err != nil {
		if catalog.IsActionNotFound(err) {
			return notFound(c, "action not found: "+req.ActionID)
		}

		h.logger.ErrorContext(c.Context(), "Submit pipeline failed",
			"session_id", req.SessionID, "action_id", req.ActionID, "error", err)

		return internalError(c)
	}

	return c.JSON(resp)
}

// UploadImages handles POST /upload-images. Every part of the multipart form
// is stored under a fresh image id; partial failures are reported per file.
func (h *APIHandlers) UploadImages(c fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "multipart form is required")
	}

	resp := UploadImagesResponse{
		ImageIDs: []string{},
		Errors:   []string{},
	}

	for _, headers := range form.File {
		for _, header := range headers {
			imageID, uploadErr := h.storeImage(c.Context(), header.Filename, header)
			if uploadErr != nil {
				h.logger.WarnContext(c.Context(), "Image upload failed",
					"filename", header.Filename, "error", uploadErr)

				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", header.Filename, uploadErr))

				continue
			}

			resp.ImageIDs = append(resp.ImageIDs, imageID)
		}
	}

	if len(resp.ImageIDs) == 0 {
		resp.Status = "failure"
		resp.Message = "No images were stored."

		if len(resp.Errors) == 0 {
			resp.Errors = append(resp.Errors, "no files in request")
		}

		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	resp.Status = "success"
	resp.Message = fmt.Sprintf("Stored %d image(s).", len(resp.ImageIDs))

	return c.JSON(resp)
}

func (h *APIHandlers) storeImage(ctx context.Context, filename string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	imageID := uuid.NewString() + filepath.Ext(filename)
	key := "images/" + imageID

	if err := h.store.Put(ctx, key, data, "application/octet-stream"); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return imageID, nil
}

// GetSignedURL handles POST /get-signed-url.
func (h *APIHandlers) GetSignedURL(c fiber.Ctx) error {
	var req SignedURLRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	url, err := h.store.URL(c.Context(), req.ObjectKey)
	if err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to sign object URL",
			"object_key", req.ObjectKey, "error", err)

		return internalError(c)
	}

	return c.JSON(SignedURLResponse{
		Status:  "success",
		Message: "Signed URL generated.",
		URL:     url,
	})
}

// HealthCheck reports liveness plus a timestamp.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
