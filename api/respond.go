package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yairfalse/lookout/errs"
)

// statusByKind maps the error taxonomy to HTTP statuses. Unclassified
// errors are internal.
var statusByKind = map[errs.Kind]int{
	errs.KindValidation: http.StatusBadRequest,
	errs.KindNotFound:   http.StatusNotFound,
	errs.KindConflict:   http.StatusConflict,
	errs.KindReference:  http.StatusUnprocessableEntity,
	errs.KindFetch:      http.StatusBadGateway,
	errs.KindDecryption: http.StatusInternalServerError,
}

func (s *Server) respondError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	// Storage and crypto failures stay out of the response body.
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(status, gin.H{"error": gin.H{"kind": string(kind), "message": "internal error"}})
		return
	}
	c.JSON(status, gin.H{"error": gin.H{"kind": string(kind), "message": err.Error()}})
}

func (s *Server) respondBadRequest(c *gin.Context, err error) {
	s.respondError(c, errs.Wrap(errs.KindValidation, err, "invalid request"))
}
