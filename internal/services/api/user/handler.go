package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/snapfeed/snapfeed/internal/services/api/auth"
	"github.com/snapfeed/snapfeed/internal/services/api/follow"
	"github.com/snapfeed/snapfeed/internal/services/api/httpx"
)

const defaultListLimit = 100

type Handler struct {
	uc      *Usecase
	follows *follow.Usecase
}

func NewHandler(uc *Usecase, follows *follow.Usecase) *Handler {
	return &Handler{uc: uc, follows: follows}
}

func (h *Handler) Register(priv gin.IRoutes) {
	priv.GET("/users/:id", h.profile)
	priv.GET("/users/:id/followers", h.followers)
	priv.GET("/users/:id/following", h.following)
	priv.GET("/users/:id/presence", h.presence)
	priv.GET("/me", h.me)
	priv.PATCH("/me", h.updateMe)
	priv.POST("/presence/heartbeat", h.heartbeat)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// profileView hides the email and carries the viewer's relation.
type profileView struct {
	ID              int64           `json:"id"`
	Username        string          `json:"username"`
	Bio             string          `json:"bio"`
	ProfileImageURL string          `json:"profileImageUrl"`
	Private         bool            `json:"private"`
	Followers       int64           `json:"followers"`
	Following       int64           `json:"following"`
	Relation        follow.Relation `json:"relation"`
}

func (h *Handler) profile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		httpx.FromRepo(c, err, "user not found")
		return
	}
	rel, err := h.follows.RelationFor(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		httpx.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, profileView{
		ID:              p.User.ID,
		Username:        p.User.Username,
		Bio:             p.User.Bio,
		ProfileImageURL: p.User.ProfileImageURL,
		Private:         p.User.Private,
		Followers:       p.Followers,
		Following:       p.Following,
		Relation:        rel,
	})
}

func (h *Handler) followers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.follows.Followers(c.Request.Context(), id, defaultListLimit)
	if err != nil {
		httpx.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) following(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.follows.Following(c.Request.Context(), id, defaultListLimit)
	if err != nil {
		httpx.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) presence(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.uc.Presence(c.Request.Context(), id)
	if err != nil {
		httpx.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) me(c *gin.Context) {
	p, err := h.uc.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpx.FromRepo(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateMeReq struct {
	Bio             *string `json:"bio" binding:"omitempty,max=500"`
	ProfileImageURL *string `json:"profileImageUrl" binding:"omitempty,max=1024,url"`
	Private         *bool   `json:"private"`
}

func (h *Handler) updateMe(c *gin.Context) {
	var req updateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.uc.UpdateProfile(c.Request.Context(), auth.UserID(c), ProfilePatch{
		Bio:             req.Bio,
		ProfileImageURL: req.ProfileImageURL,
		Private:         req.Private,
	})
	if err != nil {
		httpx.FromRepo(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) heartbeat(c *gin.Context) {
	if err := h.uc.Heartbeat(c.Request.Context(), auth.UserID(c)); err != nil {
		httpx.Internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
