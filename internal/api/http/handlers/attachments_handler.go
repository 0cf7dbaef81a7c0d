package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// AttachmentsHandler serves file upload and download.
type AttachmentsHandler struct {
	service *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{service: attachmentService}
}

// Upload POST /attachments, multipart field "file".
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file field required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable file", nil)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	key, err := h.service.Upload(c.Context(), fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AttachmentUploadResponse{Key: key}})
}

// Download GET /attachments/*, the wildcard holds the storage key.
func (h *AttachmentsHandler) Download(c *fiber.Ctx) error {
	key := c.Params("*")
	if key == "" {
		return apperrors.NewValidationError("attachment key required", nil)
	}
	reader, contentType, err := h.service.Download(c.Context(), key)
	if err != nil {
		return err
	}
	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.SendStream(reader)
}
