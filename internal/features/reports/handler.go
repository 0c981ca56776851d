package reports

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicfix/civicfix-api/internal/pkg/cloudinary"
	"github.com/civicfix/civicfix-api/internal/pkg/response"
	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// @Summary Submit a report
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.SuccessResponse{data=Receipt}
// @Router /reports [post]
func (h *Handler) CreateReport(c *gin.Context) {
	sub, ok := h.parseSubmission(c)
	if !ok {
		return
	}

	receipt, err := h.svc.Submit(c.Request.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			response.ValidationFailed(c, err.Error())
		case errors.Is(err, apperrors.ErrStorage):
			response.InternalServerError(c, "Failed to store report image", "STORAGE_FAILED")
		case errors.Is(err, apperrors.ErrAllocation):
			response.InternalServerError(c, "Failed to allocate report id", "ALLOCATION_FAILED")
		default:
			response.InternalServerError(c, "Failed to create report", "INTERNAL_ERROR")
		}
		return
	}

	response.Created(c, receipt)
}

func (h *Handler) parseSubmission(c *gin.Context) (*Submission, bool) {
	geoRaw := c.PostForm("geo_data")
	if strings.TrimSpace(geoRaw) == "" {
		response.ValidationFailed(c, "geo_data is required")
		return nil, false
	}
	var geo GeoData
	if err := json.Unmarshal([]byte(geoRaw), &geo); err != nil {
		response.ValidationFailed(c, "geo_data must be JSON with latitude and longitude")
		return nil, false
	}

	severityRaw := strings.TrimSpace(c.PostForm("severity"))
	severity, err := strconv.Atoi(severityRaw)
	if err != nil {
		response.ValidationFailed(c, "severity must be a number")
		return nil, false
	}

	sub := &Submission{
		Category:           strings.TrimSpace(c.PostForm("category")),
		Description:        strings.TrimSpace(c.PostForm("description")),
		Geo:                geo,
		Severity:           severity,
		Contact:            strings.TrimSpace(c.PostForm("email")),
		ContractorAssigned: strings.TrimSpace(c.PostForm("contractor_assigned")),
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		response.BadRequest(c, "Invalid image part", "INVALID_IMAGE")
		return nil, false
	}
	if file != nil {
		defer file.Close()

		if err := cloudinary.ValidateImageFile(header); err != nil {
			response.ValidationFailed(c, err.Error())
			return nil, false
		}

		data, err := io.ReadAll(file)
		if err != nil {
			response.BadRequest(c, "Failed to read image", "INVALID_IMAGE")
			return nil, false
		}
		sub.Image = &ImageUpload{
			Data:        data,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	}

	return sub, true
}

// @Summary List reports
// @Tags reports
// @Produce json
// @Success 200 {object} response.SuccessResponse{data=[]Report}
// @Router /reports [get]
func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, "Failed to retrieve reports")
		return
	}

	response.Success(c, gin.H{
		"count":   len(reports),
		"reports": reports,
	})
}

// @Summary Get one report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Router /reports/{id} [get]
func (h *Handler) GetReport(c *gin.Context) {
	id := c.Param("id")

	report, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Report not found", "REPORT_NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to retrieve report")
		return
	}

	response.Success(c, report)
}

// @Summary Update report status
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body UpdateStatusRequest true "Status transition"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Router /reports/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request", "INVALID_JSON")
		return
	}

	report, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, req.AssignedParty)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			response.NotFound(c, "Report not found", "REPORT_NOT_FOUND")
		case errors.Is(err, apperrors.ErrValidation):
			response.ValidationFailed(c, "Invalid status transition")
		default:
			response.DatabaseError(c, "Failed to update report status")
		}
		return
	}

	response.Success(c, report)
}
