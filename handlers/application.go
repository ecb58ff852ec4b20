package handlers

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"nestly/models"
	"nestly/services/application"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ApplicationHandler serves provider onboarding endpoints.
type ApplicationHandler struct {
	Service application.ApplicationService
}

func NewApplicationHandler(svc application.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Service: svc}
}

// SubmitApplication handles POST /api/provider/application.
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input models.ApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	app, err := h.Service.SubmitApplication(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// GetOwnApplication handles GET /api/provider/application.
func (h *ApplicationHandler) GetOwnApplication(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	app, err := h.Service.GetOwnApplication(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// UploadDocument handles POST /api/provider/application/documents as
// multipart form data with fields "kind" and "file".
func (h *ApplicationHandler) UploadDocument(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, application.MaxDocumentSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file not provided")
		return
	}
	if fileHeader.Size > application.MaxDocumentSize {
		respondError(c, application.ErrFileTooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		getLogger(c).Error("Failed to open uploaded file", zap.Error(err))
		badRequest(c, "file could not be read")
		return
	}
	defer file.Close()

	contentType, content, err := sniffContentType(file, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err != nil {
		badRequest(c, "file could not be read")
		return
	}

	doc, err := h.Service.UploadDocument(c.Request.Context(), actor, application.Upload{
		Kind:        models.DocumentKind(c.PostForm("kind")),
		FileName:    filepath.Base(fileHeader.Filename),
		ContentType: contentType,
		Size:        fileHeader.Size,
		Content:     content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// sniffContentType trusts the declared type, then the extension, then the
// leading bytes of the file. The returned reader still yields the whole file.
func sniffContentType(r io.Reader, declared, filename string) (string, io.Reader, error) {
	if declared != "" && declared != "application/octet-stream" {
		return declared, r, nil
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt, r, nil
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
