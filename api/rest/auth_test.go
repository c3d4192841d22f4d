package rest_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/crewlink/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_AutoRegister(t *testing.T) {
	s := newAPISetup(t)

	w := postJSON(s.r, "/api/auth/login", map[string]string{
		"username": "fresh", "password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.NotZero(t, resp["user_id"])

	var u model.User
	require.NoError(t, s.db.Where("username = ?", "fresh").First(&u).Error)
	assert.False(t, u.IsModerator)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newAPISetup(t)
	s.login(t, "alice")

	w := postJSON(s.r, "/api/auth/login", map[string]string{
		"username": "alice", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_BadBody(t *testing.T) {
	s := newAPISetup(t)
	w := postJSON(s.r, "/api/auth/login", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_BannedUserRefused(t *testing.T) {
	s := newAPISetup(t)
	id, _ := s.login(t, "alice")

	require.NoError(t, s.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_banned": true, "ban_reason": "spam",
	}).Error)

	w := postJSON(s.r, "/api/auth/login", map[string]string{
		"username": "alice", "password": "pass1234",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "spam")
}

func TestLogin_ExpiredBanAdmitted(t *testing.T) {
	s := newAPISetup(t)
	id, _ := s.login(t, "alice")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, s.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_banned": true, "ban_reason": "old", "ban_expires_at": past,
	}).Error)

	w := postJSON(s.r, "/api/auth/login", map[string]string{
		"username": "alice", "password": "pass1234",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_SuspendedUserRefused(t *testing.T) {
	s := newAPISetup(t)
	id, _ := s.login(t, "alice")

	until := time.Now().Add(time.Hour)
	require.NoError(t, s.db.Model(&model.User{}).Where("id = ?", id).
		Update("suspended_until", until).Error)

	w := postJSON(s.r, "/api/auth/login", map[string]string{
		"username": "alice", "password": "pass1234",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	s := newAPISetup(t)
	_, token := s.login(t, "alice")

	w := postJSON(s.r, "/api/auth/logout", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)

	// The token no longer opens authenticated routes.
	w = getReq(s.r, "/api/social/friends", bearer(token)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	s := newAPISetup(t)
	_, token := s.login(t, "alice")

	w := postJSON(s.r, "/api/auth/refresh", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	newToken := resp["token"].(string)
	assert.NotEqual(t, token, newToken)

	// Old token is dead, new one works.
	w = getReq(s.r, "/api/social/friends", bearer(token)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = getReq(s.r, "/api/social/friends", bearer(newToken)...)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	s := newAPISetup(t)
	w := getReq(s.r, "/api/social/friends")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
