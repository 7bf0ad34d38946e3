package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainnotif "github.com/snapfeed/snapfeed/internal/domain/notification"
	"github.com/snapfeed/snapfeed/internal/services/api/auth"
	"github.com/snapfeed/snapfeed/internal/services/api/httpx"
)

const defaultListLimit = 50

type Handler struct {
	notifs domainnotif.Repo
}

func NewHandler(notifs domainnotif.Repo) *Handler {
	return &Handler{notifs: notifs}
}

func (h *Handler) Register(priv gin.IRoutes) {
	priv.GET("/notifications", h.list)
	priv.POST("/notifications/:id/read", h.markRead)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.notifs.ListByUser(c.Request.Context(), auth.UserID(c), defaultListLimit)
	if err != nil {
		httpx.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) markRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(c, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := h.notifs.MarkRead(c.Request.Context(), id, auth.UserID(c)); err != nil {
		httpx.FromRepo(c, err, "notification not found")
		return
	}
	c.Status(http.StatusNoContent)
}
