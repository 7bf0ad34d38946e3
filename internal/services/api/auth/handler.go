package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapfeed/snapfeed/internal/domain/user"
	"github.com/snapfeed/snapfeed/internal/services/api/httpx"
)

type Handler struct {
	uc *Usecase
}

func NewHandler(uc *Usecase) *Handler {
	return &Handler{uc: uc}
}

// Register mounts the public auth routes on pub and the
// token-protected ones on priv.
func (h *Handler) Register(pub, priv gin.IRoutes) {
	pub.POST("/auth/sign-up", h.signUp)
	pub.POST("/auth/sign-in", h.signIn)
	priv.POST("/auth/logout", h.logout)
	priv.GET("/auth/me", h.me)
}

type tokenResp struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type signUpReq struct {
	Username  string `json:"username" binding:"required,min=3,max=30"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Device    string `json:"device" binding:"max=128"`
	PushToken string `json:"pushToken" binding:"max=512"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	meta := SessionMeta{Device: req.Device, IP: c.ClientIP(), PushToken: req.PushToken}
	u, token, err := h.uc.SignUp(c.Request.Context(), req.Username, req.Email, req.Password, meta)
	if err != nil {
		switch {
		case errors.Is(err, ErrWeakPassword):
			httpx.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			httpx.Error(c, http.StatusConflict, err.Error())
		default:
			httpx.Internal(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, tokenResp{Token: token, User: u})
}

type signInReq struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Device    string `json:"device" binding:"max=128"`
	PushToken string `json:"pushToken" binding:"max=512"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	meta := SessionMeta{Device: req.Device, IP: c.ClientIP(), PushToken: req.PushToken}
	u, token, err := h.uc.SignIn(c.Request.Context(), req.Username, req.Password, meta)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		httpx.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResp{Token: token, User: u})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.uc.Logout(c.Request.Context(), UserID(c)); err != nil {
		httpx.Internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.uc.Me(c.Request.Context(), UserID(c))
	if err != nil {
		httpx.FromRepo(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, u)
}
