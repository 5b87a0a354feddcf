package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aafiyacare/homecare-api/internal/model"
	apperrors "github.com/aafiyacare/homecare-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// PaginatedData wraps list payloads with their total row count.
type PaginatedData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func NewPaginatedResponse(items interface{}, total int64, p model.Pagination) *Response {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return NewSuccessResponse(PaginatedData{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: p.Limit(),
	})
}

// Error writes the HTTP response for a service error. Application errors
// carry their own status; auth sentinels map explicitly; anything else
// is a 500 with a generic message so internals never leak to clients.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(err.Error()))
	case errors.Is(err, model.ErrAccountLocked):
		c.JSON(http.StatusForbidden, NewErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
	}
}
