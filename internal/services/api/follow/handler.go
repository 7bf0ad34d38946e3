package follow

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snapfeed/snapfeed/internal/repository/postgres"
	"github.com/snapfeed/snapfeed/internal/services/api/auth"
	"github.com/snapfeed/snapfeed/internal/services/api/httpx"
)

const defaultListLimit = 100

type Handler struct {
	uc *Usecase
}

func NewHandler(uc *Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) Register(priv gin.IRoutes) {
	priv.POST("/follow", h.request)
	priv.POST("/unfollow", h.unfollow)
	priv.GET("/follow/requests", h.listRequests)
	priv.POST("/follow/requests/respond", h.respond)
}

type followReq struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
}

type followResp struct {
	Relation Relation `json:"relation"`
}

func (h *Handler) request(c *gin.Context) {
	var req followReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	rel, err := h.uc.Request(c.Request.Context(), auth.UserID(c), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfTarget):
			httpx.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTargetMissing):
			httpx.Error(c, http.StatusNotFound, err.Error())
		default:
			httpx.Internal(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, followResp{Relation: rel})
}

func (h *Handler) unfollow(c *gin.Context) {
	var req followReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.uc.Unfollow(c.Request.Context(), auth.UserID(c), req.UserID); err != nil {
		if errors.Is(err, ErrSelfTarget) {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		httpx.Internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type pendingRequestView struct {
	RequestID           int64     `json:"requestId"`
	FromUserID          int64     `json:"fromUserId"`
	FromUsername        string    `json:"fromUsername"`
	FromProfileImageURL string    `json:"fromProfileImageUrl"`
	Timestamp           time.Time `json:"timestamp"`
}

func (h *Handler) listRequests(c *gin.Context) {
	reqs, err := h.uc.ListRequests(c.Request.Context(), auth.UserID(c), defaultListLimit)
	if err != nil {
		httpx.Internal(c, err)
		return
	}
	out := make([]pendingRequestView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, pendingRequestView{
			RequestID:           r.ID,
			FromUserID:          r.FromUserID,
			FromUsername:        r.FromUsername,
			FromProfileImageURL: r.FromProfileImageURL,
			Timestamp:           r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

type respondReq struct {
	RequestID int64  `json:"requestId" binding:"required,gt=0"`
	Action    string `json:"action" binding:"required,oneof=accept reject"`
}

func (h *Handler) respond(c *gin.Context) {
	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.uc.Respond(c.Request.Context(), auth.UserID(c), req.RequestID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadAction):
			httpx.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, postgres.ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "pending request not found")
		default:
			httpx.Internal(c, err)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
