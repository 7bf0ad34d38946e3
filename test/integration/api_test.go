//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

// Requires a running stack: postgres (migrated), redis, kafka, api.
//
//	go test -tags=integration ./test/integration/...
func TestFollowFlow(t *testing.T) {
	cfg := LoadCfg()

	WaitTCP(t, "kafka", cfg.KafkaBootstrap, 60*time.Second)
	WaitHealthz(t, cfg.APIBaseURL+"/healthz", 60*time.Second)
	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()

	suffix := rand.Int63()
	alice := signUp(t, cfg, fmt.Sprintf("it_alice_%d", suffix))
	bob := signUp(t, cfg, fmt.Sprintf("it_bob_%d", suffix))

	// bob goes private so alice's follow becomes a pending request
	HTTPDoJSON(t, "PATCH", cfg.APIBaseURL+"/v1/me", bob.token,
		[]byte(`{"private": true}`), 200)

	var rel struct {
		Relation string `json:"relation"`
	}
	body := HTTPDoJSON(t, "POST", cfg.APIBaseURL+"/v1/follow", alice.token,
		[]byte(fmt.Sprintf(`{"userId": %d}`, bob.userID)), 200)
	mustJSON(t, body, &rel)
	if rel.Relation != "pending" {
		t.Fatalf("want pending, got %q", rel.Relation)
	}
	if n := CountPendingRequests(t, db, bob.userID); n != 1 {
		t.Fatalf("want 1 pending request for bob, got %d", n)
	}

	var inbox []struct {
		RequestID    int64  `json:"requestId"`
		FromUserID   int64  `json:"fromUserId"`
		FromUsername string `json:"fromUsername"`
	}
	body = HTTPDoJSON(t, "GET", cfg.APIBaseURL+"/v1/follow/requests", bob.token, nil, 200)
	mustJSON(t, body, &inbox)
	if len(inbox) != 1 || inbox[0].FromUserID != alice.userID {
		t.Fatalf("unexpected inbox: %s", string(body))
	}

	HTTPDoJSON(t, "POST", cfg.APIBaseURL+"/v1/follow/requests/respond", bob.token,
		[]byte(fmt.Sprintf(`{"requestId": %d, "action": "accept"}`, inbox[0].RequestID)), 204)

	body = HTTPDoJSON(t, "GET", fmt.Sprintf("%s/v1/users/%d", cfg.APIBaseURL, bob.userID), alice.token, nil, 200)
	var profile struct {
		Relation  string `json:"relation"`
		Followers int64  `json:"followers"`
	}
	mustJSON(t, body, &profile)
	if profile.Relation != "following" {
		t.Fatalf("want following, got %q", profile.Relation)
	}
	if profile.Followers != 1 {
		t.Fatalf("want 1 follower, got %d", profile.Followers)
	}

	// both the request and the acceptance must have been published
	WaitOutboxDrained(t, db, 30*time.Second)

	var ev struct {
		Kind     string `json:"kind"`
		ActorID  int64  `json:"actor_id"`
		TargetID int64  `json:"target_id"`
	}
	group := fmt.Sprintf("it-follow-%d", suffix)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		if !ReadOneJSON(t, cfg.KafkaBootstrap, cfg.FollowTopic, group, 15*time.Second, &ev) {
			break
		}
		if ev.ActorID == alice.userID && ev.TargetID == bob.userID {
			seen[ev.Kind] = true
		}
		if seen["follow_requested"] && seen["request_accepted"] {
			break
		}
	}
	if !seen["follow_requested"] || !seen["request_accepted"] {
		t.Fatalf("missing follow events on %s: %v", cfg.FollowTopic, seen)
	}

	var notifs []struct {
		Type string `json:"type"`
	}
	body = HTTPDoJSON(t, "GET", cfg.APIBaseURL+"/v1/notifications", bob.token, nil, 200)
	mustJSON(t, body, &notifs)
	if len(notifs) == 0 || notifs[0].Type != "follow_request" {
		t.Fatalf("bob should have a follow_request notification: %s", string(body))
	}

	HTTPDoJSON(t, "POST", cfg.APIBaseURL+"/v1/unfollow", alice.token,
		[]byte(fmt.Sprintf(`{"userId": %d}`, bob.userID)), 204)
	body = HTTPDoJSON(t, "GET", fmt.Sprintf("%s/v1/users/%d", cfg.APIBaseURL, bob.userID), alice.token, nil, 200)
	mustJSON(t, body, &profile)
	if profile.Relation != "none" {
		t.Fatalf("want none after unfollow, got %q", profile.Relation)
	}
}

func TestAuth_LogoutKeepsTokenButDropsSessions(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.APIBaseURL+"/healthz", 60*time.Second)
	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()

	u := signUp(t, cfg, fmt.Sprintf("it_carol_%d", rand.Int63()))

	HTTPDoJSON(t, "POST", cfg.APIBaseURL+"/v1/auth/logout", u.token, nil, 204)

	var active int
	if err := db.QueryRow(`select count(*) from sessions where user_id = $1 and active`, u.userID).Scan(&active); err != nil {
		t.Fatalf("[db] sessions: %v", err)
	}
	if active != 0 {
		t.Fatalf("want 0 active sessions, got %d", active)
	}

	// stateless token is still honored until it expires
	HTTPDoJSON(t, "GET", cfg.APIBaseURL+"/v1/auth/me", u.token, nil, 200)
}

type itUser struct {
	userID int64
	token  string
}

func signUp(t *testing.T, cfg Cfg, username string) itUser {
	t.Helper()
	body := HTTPDoJSON(t, "POST", cfg.APIBaseURL+"/v1/auth/sign-up", "",
		[]byte(fmt.Sprintf(`{"username":%q,"email":"%s@it.test","password":"it-password-1"}`, username, username)), 201)
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	mustJSON(t, body, &out)
	if out.Token == "" || out.User.ID == 0 {
		t.Fatalf("bad sign-up response: %s", string(body))
	}
	return itUser{userID: out.User.ID, token: out.Token}
}

func mustJSON(t *testing.T, b []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal %s: %v", string(b), err)
	}
}
