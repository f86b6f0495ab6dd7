package handlers

import (
	"net/http"

	"rentalhub/internal/common"
	"rentalhub/internal/services"

	"github.com/labstack/echo/v4"
)

// AttachmentHandlers handles file uploads linked to rentals
type AttachmentHandlers struct {
	attachmentService services.AttachmentService
}

func NewAttachmentHandlers(attachmentService services.AttachmentService) *AttachmentHandlers {
	return &AttachmentHandlers{attachmentService: attachmentService}
}

func (h *AttachmentHandlers) Register(g *echo.Group) {
	g.POST("/rentals/:id/attachments", h.UploadAttachment)
	g.GET("/rentals/:id/attachments", h.ListAttachments)
}

// UploadAttachment handles POST /rentals/:id/attachments as multipart/form-data
// with the file in the "file" field
func (h *AttachmentHandlers) UploadAttachment(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "multipart field 'file' is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendError(c, common.PersistenceError("read uploaded file", err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	attachment, err := h.attachmentService.Upload(c.Request().Context(), id, fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, attachment)
}

// ListAttachments handles GET /rentals/:id/attachments
func (h *AttachmentHandlers) ListAttachments(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	attachments, err := h.attachmentService.List(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"attachments": attachments})
}
