package consent

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/handler"
	"github.com/aafiyacare/homecare-api/internal/middleware"
	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/service/consent"
)

type Handler struct {
	service consent.Servicer
}

func NewHandler(service consent.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consents := r.Group("/patients/:id/consents")
	{
		consents.POST("", h.RecordConsent)
		consents.GET("", h.ListConsents)
		consents.POST("/:consentID/revoke", h.RevokeConsent)
	}
}

func (h *Handler) RecordConsent(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	var req model.RecordConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	consent, err := h.service.Record(c.Request.Context(), patientID, claims.UserID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(consent))
}

func (h *Handler) ListConsents(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	consents, err := h.service.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(consents))
}

func (h *Handler) RevokeConsent(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}
	consentID, err := uuid.Parse(c.Param("consentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consent id"))
		return
	}

	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	consent, err := h.service.Revoke(c.Request.Context(), patientID, consentID, claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(consent))
}
