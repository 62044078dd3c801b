package api

import (
	"encoding/json"
	"net/http"

	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/types"
)

type publishResponse struct {
	EventID string   `json:"event_id"`
	Heads   []string `json:"heads"`
}

func writePublishResult(w http.ResponseWriter, id types.EventID, heads []types.EventID, err error) {
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{EventID: hexEventID(id), Heads: hexEventIDs(heads)})
}

// parentHeadID decodes the body's nullable parent_head_id into the pointer
// shape engine.publish expects: nil means "no parent, first event."
func parentHeadID(raw *string) (*types.EventID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := parseEventID(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// firstTag returns the first of a persona_tags list, or "" if none was
// given. An event carries at most one persona tag (aux_key has room for a
// single digest); a client sending several is asked to pick one.
func firstTag(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}

type publishSocialPostRequest struct {
	ParentHeadID *string  `json:"parent_head_id"`
	Content      string   `json:"content"`
	PersonaTags  []string `json:"persona_tags"`
	ReplyTo      *string  `json:"reply_to"`
}

func (s *Server) handlePublishSocialPost(w http.ResponseWriter, r *http.Request) {
	ident, status, msg := authenticate(r, r.PathValue("id"))
	if ident == nil {
		writeError(w, status, msg)
		return
	}

	var req publishSocialPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	parent, err := parentHeadID(req.ParentHeadID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var replyTo *types.EventID
	if req.ReplyTo != nil {
		id, err := parseEventID(*req.ReplyTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		replyTo = &id
	}

	payload := types.SocialPost{PersonaTag: firstTag(req.PersonaTags), Content: req.Content}
	id, heads, err := s.engine.PublishSocialPost(ident, parent, payload, replyTo)
	writePublishResult(w, id, heads, err)
}

type updateProfileRequest struct {
	ParentHeadID *string `json:"parent_head_id"`
	DisplayName  string  `json:"display_name"`
	Bio          string  `json:"bio"`
	Avatar       []byte  `json:"avatar"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ident, status, msg := authenticate(r, r.PathValue("id"))
	if ident == nil {
		writeError(w, status, msg)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	parent, err := parentHeadID(req.ParentHeadID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload := types.ProfileUpdate{DisplayName: req.DisplayName, Bio: req.Bio, Avatar: req.Avatar}
	id, heads, err := s.engine.PublishProfileUpdate(ident, parent, payload)
	writePublishResult(w, id, heads, err)
}

type followRequest struct {
	ParentHeadID *string  `json:"parent_head_id"`
	Followee     string   `json:"followee"`
	FilterMode   string   `json:"filter_mode"`
	PersonaTags  []string `json:"persona_tags"`
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	ident, status, msg := authenticate(r, r.PathValue("id"))
	if ident == nil {
		writeError(w, status, msg)
		return
	}

	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	followee, err := identity.Parse(req.Followee)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid followee id")
		return
	}
	parent, err := parentHeadID(req.ParentHeadID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode := types.FollowMode(req.FilterMode)
	if mode != "" && mode != types.FollowModeOnly && mode != types.FollowModeExcept {
		writeError(w, http.StatusBadRequest, "invalid filter_mode")
		return
	}

	payload := types.FollowUpdate{Followee: followee, Mode: mode, Tags: req.PersonaTags}
	id, heads, err := s.engine.PublishFollowUpdate(ident, parent, payload)
	writePublishResult(w, id, heads, err)
}

type unfollowRequest struct {
	ParentHeadID *string `json:"parent_head_id"`
	Followee     string  `json:"followee"`
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	ident, status, msg := authenticate(r, r.PathValue("id"))
	if ident == nil {
		writeError(w, status, msg)
		return
	}

	var req unfollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	followee, err := identity.Parse(req.Followee)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid followee id")
		return
	}
	parent, err := parentHeadID(req.ParentHeadID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, heads, err := s.engine.PublishUnfollow(ident, parent, types.Unfollow{Followee: followee})
	writePublishResult(w, id, heads, err)
}
