package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

func (s *Server) handleListInstances(c *gin.Context) {
	var filter types.InstanceFilter

	if raw := c.Query("kind"); raw != "" {
		kind, err := types.ParseKind(raw)
		if err != nil {
			s.respondError(c, errs.Wrap(errs.KindValidation, err, "invalid kind"))
			return
		}
		filter.Kind = kind
	}
	filter.Status = c.Query("status")
	if raw := c.Query("watched"); raw != "" {
		watched, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(c, errs.Wrap(errs.KindValidation, err, "invalid watched flag"))
			return
		}
		filter.Watched = &watched
	}

	instances, err := s.store.ListInstances(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instances": instances})
}

func (s *Server) handleRefresh(c *gin.Context) {
	kind, err := types.ParseKind(c.Query("kind"))
	if err != nil {
		s.respondError(c, errs.Wrap(errs.KindValidation, err, "invalid kind"))
		return
	}

	result, err := s.refresher.Refresh(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type watchRequest struct {
	Watch   []string `json:"watch"`
	Unwatch []string `json:"unwatch"`
}

func (s *Server) handleWatch(c *gin.Context) {
	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	if len(req.Watch) == 0 && len(req.Unwatch) == 0 {
		s.respondError(c, errs.New(errs.KindValidation, "nothing to watch or unwatch"))
		return
	}

	if err := s.store.SyncWatch(c.Request.Context(), c.Param("id"), req.Watch, req.Unwatch); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watched": len(req.Watch), "unwatched": len(req.Unwatch)})
}
