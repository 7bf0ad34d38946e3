package follow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/snapfeed/snapfeed/internal/services/api/auth"
)

func newTestRouter(t *testing.T, uc *Usecase, callerID int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	priv := r.Group("/v1", auth.Middleware(func(token string) (int64, error) {
		if token != "good" {
			return 0, auth.ErrTokenInvalid
		}
		return callerID, nil
	}))
	NewHandler(uc).Register(priv)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_RequiresToken(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, alice)

	w := doJSON(t, r, http.MethodPost, "/v1/follow", "", `{"userId":3}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/follow", "bad", `{"userId":3}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "error")
}

func TestHandler_Follow(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, alice)

	w := doJSON(t, r, http.MethodPost, "/v1/follow", "good", `{"userId":3}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Relation string `json:"relation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "following", resp.Relation)
}

func TestHandler_FollowPrivate(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, alice)

	w := doJSON(t, r, http.MethodPost, "/v1/follow", "good", `{"userId":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pending")
}

func TestHandler_FollowSelf(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, alice)

	w := doJSON(t, r, http.MethodPost, "/v1/follow", "good", `{"userId":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_FollowUnknownTarget(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, alice)

	w := doJSON(t, r, http.MethodPost, "/v1/follow", "good", `{"userId":77}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_FollowBadBody(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, alice)

	for _, body := range []string{``, `{}`, `{"userId":0}`, `{"userId":"x"}`} {
		w := doJSON(t, r, http.MethodPost, "/v1/follow", "good", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestHandler_RequestsAndRespond(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)

	// alice asks, bob reads the inbox and accepts
	asAlice := newTestRouter(t, uc, alice)
	w := doJSON(t, asAlice, http.MethodPost, "/v1/follow", "good", `{"userId":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	asBob := newTestRouter(t, uc, bob)
	w = doJSON(t, asBob, http.MethodGet, "/v1/follow/requests", "good", "")
	require.Equal(t, http.StatusOK, w.Code)

	var inbox []struct {
		RequestID    int64  `json:"requestId"`
		FromUserID   int64  `json:"fromUserId"`
		FromUsername string `json:"fromUsername"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	require.Len(t, inbox, 1)
	require.Equal(t, alice, inbox[0].FromUserID)
	require.Equal(t, "alice", inbox[0].FromUsername)

	w = doJSON(t, asBob, http.MethodPost, "/v1/follow/requests/respond", "good",
		`{"requestId":1,"action":"accept"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, asBob, http.MethodGet, "/v1/follow/requests", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestHandler_RespondValidation(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, bob)

	w := doJSON(t, r, http.MethodPost, "/v1/follow/requests/respond", "good",
		`{"requestId":1,"action":"maybe"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/follow/requests/respond", "good",
		`{"requestId":123,"action":"accept"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Unfollow(t *testing.T) {
	uc, _, _, _ := newFollowUC(t)
	r := newTestRouter(t, uc, alice)

	w := doJSON(t, r, http.MethodPost, "/v1/follow", "good", `{"userId":3}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/unfollow", "good", `{"userId":3}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	// idempotent
	w = doJSON(t, r, http.MethodPost, "/v1/unfollow", "good", `{"userId":3}`)
	require.Equal(t, http.StatusNoContent, w.Code)
}
