package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// befriend runs the request/accept handshake between two users.
func befriend(t *testing.T, s *apiSetup, fromTok string, toID int64, toTok string) {
	t.Helper()
	reqID := sendRequest(t, s, fromTok, toID)
	w := postJSON(s.r, fmt.Sprintf("/api/social/requests/%d/accept", reqID), nil, bearer(toTok)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func createProject(t *testing.T, s *apiSetup, token, name string, public bool) int64 {
	t.Helper()
	w := postJSON(s.r, "/api/projects", map[string]interface{}{
		"name": name, "description": "a project", "is_public": public,
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Project struct {
			ID int64 `json:"id"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Project.ID
}

func invite(t *testing.T, s *apiSetup, token string, projectID, invitingID, invitedID int64) int64 {
	t.Helper()
	w := postJSON(s.r, fmt.Sprintf("/api/projects/%d/invitations", projectID), map[string]int64{
		"inviting_id": invitingID, "invited_id": invitedID,
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Invitation struct {
			ID int64 `json:"id"`
		} `json:"invitation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Invitation.ID
}

func memberCount(t *testing.T, s *apiSetup, token string, projectID int64) int {
	t.Helper()
	w := getReq(s.r, fmt.Sprintf("/api/projects/%d/members", projectID), bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Members []json.RawMessage `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return len(resp.Members)
}

func TestCreateProject(t *testing.T) {
	s := newAPISetup(t)
	_, tok := s.login(t, "alice")

	projectID := createProject(t, s, tok, "atlas", true)

	w := getReq(s.r, fmt.Sprintf("/api/projects/%d", projectID), bearer(tok)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "atlas")

	// The owner is implicit and holds no member row.
	assert.Equal(t, 0, memberCount(t, s, tok, projectID))
}

func TestInvitationLifecycleHTTP(t *testing.T) {
	s := newAPISetup(t)
	aliceID, aliceTok := s.login(t, "alice")
	bobID, bobTok := s.login(t, "bob")
	befriend(t, s, aliceTok, bobID, bobTok)

	projectID := createProject(t, s, aliceTok, "atlas", true)
	invID := invite(t, s, aliceTok, projectID, aliceID, bobID)

	// Bob sees the pending invitation.
	w := getReq(s.r, "/api/invitations", bearer(bobTok)...)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Invitations []json.RawMessage `json:"invitations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Invitations, 1)

	// Only the invited user may accept.
	w = postJSON(s.r, fmt.Sprintf("/api/invitations/%d/accept", invID), nil, bearer(aliceTok)...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(s.r, fmt.Sprintf("/api/invitations/%d/accept", invID), nil, bearer(bobTok)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, memberCount(t, s, bobTok, projectID))

	// Inviting an existing member conflicts.
	w = postJSON(s.r, fmt.Sprintf("/api/projects/%d/invitations", projectID), map[string]int64{
		"inviting_id": aliceID, "invited_id": bobID,
	}, bearer(aliceTok)...)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInvite_RequiresFriendship(t *testing.T) {
	s := newAPISetup(t)
	aliceID, aliceTok := s.login(t, "alice")
	bobID, _ := s.login(t, "bob")

	projectID := createProject(t, s, aliceTok, "atlas", true)

	w := postJSON(s.r, fmt.Sprintf("/api/projects/%d/invitations", projectID), map[string]int64{
		"inviting_id": aliceID, "invited_id": bobID,
	}, bearer(aliceTok)...)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInvite_OnBehalfOfAnotherIsForbidden(t *testing.T) {
	s := newAPISetup(t)
	aliceID, aliceTok := s.login(t, "alice")
	bobID, bobTok := s.login(t, "bob")
	befriend(t, s, aliceTok, bobID, bobTok)

	projectID := createProject(t, s, aliceTok, "atlas", true)

	// Bob cannot issue an invitation in Alice's name.
	w := postJSON(s.r, fmt.Sprintf("/api/projects/%d/invitations", projectID), map[string]int64{
		"inviting_id": aliceID, "invited_id": bobID,
	}, bearer(bobTok)...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRejectInvitationHTTP(t *testing.T) {
	s := newAPISetup(t)
	aliceID, aliceTok := s.login(t, "alice")
	bobID, bobTok := s.login(t, "bob")
	befriend(t, s, aliceTok, bobID, bobTok)

	projectID := createProject(t, s, aliceTok, "atlas", true)
	invID := invite(t, s, aliceTok, projectID, aliceID, bobID)

	w := postJSON(s.r, fmt.Sprintf("/api/invitations/%d/reject", invID), nil, bearer(bobTok)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, memberCount(t, s, bobTok, projectID))

	// The invitation is gone.
	w = postJSON(s.r, fmt.Sprintf("/api/invitations/%d/accept", invID), nil, bearer(bobTok)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveMemberHTTP(t *testing.T) {
	s := newAPISetup(t)
	aliceID, aliceTok := s.login(t, "alice")
	bobID, bobTok := s.login(t, "bob")
	befriend(t, s, aliceTok, bobID, bobTok)

	projectID := createProject(t, s, aliceTok, "atlas", true)
	invID := invite(t, s, aliceTok, projectID, aliceID, bobID)
	w := postJSON(s.r, fmt.Sprintf("/api/invitations/%d/accept", invID), nil, bearer(bobTok)...)
	require.Equal(t, http.StatusOK, w.Code)

	// Non-owners cannot remove members.
	w = deleteReq(s.r, fmt.Sprintf("/api/projects/%d/members/%d", projectID, aliceID), bearer(bobTok)...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner cannot be removed, even by themselves.
	w = deleteReq(s.r, fmt.Sprintf("/api/projects/%d/members/%d", projectID, aliceID), bearer(aliceTok)...)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = deleteReq(s.r, fmt.Sprintf("/api/projects/%d/members/%d", projectID, bobID), bearer(aliceTok)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, memberCount(t, s, aliceTok, projectID))
}

func TestLeaveProjectHTTP(t *testing.T) {
	s := newAPISetup(t)
	aliceID, aliceTok := s.login(t, "alice")
	bobID, bobTok := s.login(t, "bob")
	befriend(t, s, aliceTok, bobID, bobTok)

	projectID := createProject(t, s, aliceTok, "atlas", true)
	invID := invite(t, s, aliceTok, projectID, aliceID, bobID)
	w := postJSON(s.r, fmt.Sprintf("/api/invitations/%d/accept", invID), nil, bearer(bobTok)...)
	require.Equal(t, http.StatusOK, w.Code)

	// Owners must transfer or delete, never leave.
	w = postJSON(s.r, fmt.Sprintf("/api/projects/%d/leave", projectID), nil, bearer(aliceTok)...)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = postJSON(s.r, fmt.Sprintf("/api/projects/%d/leave", projectID), nil, bearer(bobTok)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, memberCount(t, s, aliceTok, projectID))
}
