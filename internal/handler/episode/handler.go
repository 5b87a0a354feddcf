package episode

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/handler"
	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/service/episode"
)

type Handler struct {
	service episode.Servicer
}

func NewHandler(service episode.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	episodes := r.Group("/patients/:id/episodes")
	{
		episodes.POST("", h.OpenEpisode)
		episodes.GET("", h.ListEpisodes)
		episodes.GET("/:episodeID", h.GetEpisode)
		episodes.POST("/:episodeID/close", h.CloseEpisode)
	}
}

func (h *Handler) OpenEpisode(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	var req model.OpenEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	episode, err := h.service.Open(c.Request.Context(), patientID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(episode))
}

func (h *Handler) GetEpisode(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}
	episodeID, err := uuid.Parse(c.Param("episodeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid episode id"))
		return
	}

	episode, err := h.service.Get(c.Request.Context(), patientID, episodeID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episode))
}

func (h *Handler) ListEpisodes(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}

	episodes, err := h.service.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episodes))
}

func (h *Handler) CloseEpisode(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient id"))
		return
	}
	episodeID, err := uuid.Parse(c.Param("episodeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid episode id"))
		return
	}

	var req model.CloseEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	episode, err := h.service.Close(c.Request.Context(), patientID, episodeID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episode))
}
