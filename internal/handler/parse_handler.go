package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docparse/internal/domain"
	"docparse/internal/middleware"
	"docparse/internal/service"
)

// ReadinessChecker reports whether models are loaded.
type ReadinessChecker interface {
	Ready() bool
}

// ParseHandler handles document parse requests.
type ParseHandler struct {
	parseService   service.ParseService
	models         ReadinessChecker
	maxUploadBytes int64
}

// NewParseHandler creates a new ParseHandler. Request bodies above
// maxUploadBytes are rejected.
func NewParseHandler(parseService service.ParseService, models ReadinessChecker, maxUploadBytes int64) *ParseHandler {
	return &ParseHandler{parseService: parseService, models: models, maxUploadBytes: maxUploadBytes}
}

// Parse handles POST /predict and POST /api/v1/parse.
//
// The multipart form carries the document in "file" and an optional JSON
// object of engine options in "kwargs". A successful parse returns the
// output tree as output.zip.
func (h *ParseHandler) Parse(c *gin.Context) {
	if h.models != nil && !h.models.Ready() {
		HandleError(c, domain.ErrNotReady)
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		HandleError(c, domain.ErrMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	// X-Request-ID is caller controlled, so it never names a namespace.
	requestID := uuid.New()
	log.Debug().
		Str("request_id", middleware.GetRequestID(c)).
		Str("parse_request_id", requestID.String()).
		Msg("parseHandler.Parse: upload accepted")

	result, err := h.parseService.Process(c.Request.Context(), service.UploadInput{
		RequestID: requestID,
		File:      file,
		Filename:  header.Filename,
		Kwargs:    c.PostForm("kwargs"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("X-Parse-Request-ID", result.RequestID.String())
	RespondArchive(c, result.Archive)
	log.Debug().
		Str("request_id", result.RequestID.String()).
		Str("stage", string(domain.StageEncoded)).
		Int("bytes", len(result.Archive.Data)).
		Msg("parseHandler.Parse: archive sent")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
