package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/gin-gonic/gin"
)

// InspectionHandler accepts and serves inspection submissions.
type InspectionHandler struct {
	svc     *service.InspectionService
	storage *service.StorageService
}

func NewInspectionHandler(svc *service.InspectionService, storage *service.StorageService) *InspectionHandler {
	return &InspectionHandler{svc: svc, storage: storage}
}

// Submit POST /api/v1/inspections
//
// Multipart form. Required fields: apar_id, apar_qrCode, condition,
// and the photo and selfie files. A rejected submission returns 422
// with the machine-readable reason; an accepted one returns 201 with
// the created inspection.
func (h *InspectionHandler) Submit(c *gin.Context) {
	req := &service.SubmitInspectionRequest{
		AparID:     c.PostForm("apar_id"),
		QRCode:     c.PostForm("apar_qrCode"),
		Condition:  c.PostForm("condition"),
		Notes:      c.PostForm("notes"),
		PressureOK: formBool(c, "pressure_ok"),
		HoseOK:     formBool(c, "hose_ok"),
		PinOK:      formBool(c, "pin_ok"),
		SealOK:     formBool(c, "seal_ok"),
	}
	if req.AparID == "" || req.QRCode == "" || req.Condition == "" {
		BadRequest(c, "apar_id, apar_qrCode and condition are required")
		return
	}

	if lat, ok := formFloat(c, "latitude"); ok {
		if lng, ok := formFloat(c, "longitude"); ok {
			req.Latitude = &lat
			req.Longitude = &lng
		}
	}

	photo, err := formAttachment(c, "photo")
	if err != nil {
		BadRequest(c, "photo file is required")
		return
	}
	defer photo.close()
	selfie, err := formAttachment(c, "selfie")
	if err != nil {
		BadRequest(c, "selfie file is required")
		return
	}
	defer selfie.close()

	result, err := h.svc.Submit(c.Request.Context(), GetUserID(c), req, photo.attachment, selfie.attachment)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "apar not found")
		case errors.Is(err, service.ErrInvalidCondition), errors.Is(err, service.ErrMissingAttachment):
			BadRequest(c, err.Error())
		default:
			InternalError(c, "submit inspection failed: "+err.Error())
		}
		return
	}

	if !result.Decision.Accepted {
		c.JSON(422, gin.H{
			"valid":  false,
			"reason": result.Decision.Reason,
		})
		return
	}

	c.JSON(201, gin.H{
		"message":    "inspection recorded",
		"inspection": result.Inspection,
	})
}

// List GET /api/v1/inspections
func (h *InspectionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"apar_id":   c.Query("apar_id"),
		"user_id":   c.Query("user_id"),
		"condition": c.Query("condition"),
		"from":      c.Query("from"),
		"to":        c.Query("to"),
	}

	inspections, total, err := h.svc.ListInspections(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list inspections failed: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: inspections, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/inspections/:id
func (h *InspectionHandler) Get(c *gin.Context) {
	inspection, err := h.svc.GetInspection(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "inspection not found")
			return
		}
		InternalError(c, "get inspection failed: "+err.Error())
		return
	}
	Success(c, gin.H{"inspection": inspection})
}

// Delete DELETE /api/v1/inspections/:id
func (h *InspectionHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteInspection(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "inspection not found")
			return
		}
		InternalError(c, "delete inspection failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "inspection deleted"})
}

// DownloadFile GET /api/v1/files/*object
//
// Streams a stored attachment back to the client.
func (h *InspectionHandler) DownloadFile(c *gin.Context) {
	object := strings.TrimPrefix(c.Param("object"), "/")
	if object == "" {
		BadRequest(c, "object path is required")
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), object)
	if err != nil {
		NotFound(c, "file not found")
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "inline")
	c.Status(200)
	io.Copy(c.Writer, reader)
}

type openedAttachment struct {
	attachment *service.Attachment
	file       multipart.File
}

func (a *openedAttachment) close() {
	if a.file != nil {
		a.file.Close()
	}
}

func formAttachment(c *gin.Context, field string) (*openedAttachment, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &openedAttachment{
		attachment: &service.Attachment{
			Reader:      file,
			FileName:    header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		},
		file: file,
	}, nil
}

func formBool(c *gin.Context, field string) bool {
	v, _ := strconv.ParseBool(c.PostForm(field))
	return v
}

func formFloat(c *gin.Context, field string) (float64, bool) {
	v, err := strconv.ParseFloat(c.PostForm(field), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
