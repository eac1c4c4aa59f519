package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"docparse/internal/domain"
	"docparse/internal/middleware"
)

// APIResponse is the standard envelope for all JSON API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondArchive streams a packaged archive as a zip attachment.
func RespondArchive(c *gin.Context, archive *domain.Archive) {
	c.Header("Content-Disposition", `attachment; filename="`+domain.ArchiveFileName+`"`)
	c.Header("Content-Length", strconv.Itoa(len(archive.Data)))
	c.Data(http.StatusOK, domain.ContentTypeZip, archive.Data)
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Parse and packaging failures carry the underlying error text.
func MapDomainError(err error) (status int, code, msg string) {
	code = domain.ErrorCode(err)
	switch {
	case errors.Is(err, domain.ErrInvalidFileType):
		return http.StatusBadRequest, code, domain.ErrInvalidFileType.Error()
	case errors.Is(err, domain.ErrInvalidOptions):
		return http.StatusBadRequest, code, err.Error()
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, code, domain.ErrMissingFile.Error()
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, code, domain.ErrFileTooLarge.Error()
	case errors.Is(err, domain.ErrParseFailed):
		return http.StatusInternalServerError, code, err.Error()
	case errors.Is(err, domain.ErrPackagingFailed):
		return http.StatusInternalServerError, code, err.Error()
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable, code, domain.ErrNotReady.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, code, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, code, domain.ErrUnauthorized.Error()
	default:
		return http.StatusInternalServerError, code, "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Str("code", code).Msg("request failed")
	}
	RespondError(c, status, code, msg)
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
