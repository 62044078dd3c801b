package api

import (
	"net/http"
	"strconv"

	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/types"
	"github.com/rostra-dev/rostra/pkg/views"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func pageSize(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n <= 0 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

func cursorUint64(r *http.Request, key string) uint64 {
	v, _ := strconv.ParseUint(r.URL.Query().Get(key), 10, 64)
	return v
}

func cursorEventID(r *http.Request, key string) types.EventID {
	id, _ := parseEventID(r.URL.Query().Get(key))
	return id
}

func pathAuthor(w http.ResponseWriter, r *http.Request) (types.AuthorID, bool) {
	author, err := identity.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rostra id")
		return author, false
	}
	return author, true
}

type followeeJSON struct {
	Followee string   `json:"followee"`
	Mode     string   `json:"filter_mode,omitempty"`
	Tags     []string `json:"persona_tags,omitempty"`
}

func renderFollowee(f types.FollowState) followeeJSON {
	rendered, _ := identity.Render(f.Followee)
	return followeeJSON{Followee: rendered, Mode: string(f.Mode), Tags: f.Tags}
}

func (s *Server) handleFollowees(w http.ResponseWriter, r *http.Request) {
	author, ok := pathAuthor(w, r)
	if !ok {
		return
	}
	followees, err := s.views.Followees(author)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	out := make([]followeeJSON, len(followees))
	for i, f := range followees {
		out[i] = renderFollowee(f)
	}
	writeJSON(w, http.StatusOK, struct {
		Followees []followeeJSON `json:"followees"`
	}{out})
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	author, ok := pathAuthor(w, r)
	if !ok {
		return
	}
	followers, err := s.views.Followers(author)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	out := make([]string, len(followers))
	for i, f := range followers {
		out[i], _ = identity.Render(f)
	}
	writeJSON(w, http.StatusOK, struct {
		Followers []string `json:"followers"`
	}{out})
}

type notificationJSON struct {
	AuthorTimestamp uint64 `json:"author_timestamp"`
	Seq             uint64 `json:"seq"`
	EventID         string `json:"event_id"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	author, ok := pathAuthor(w, r)
	if !ok {
		return
	}
	notes, err := s.views.Notifications(author, cursorUint64(r, "cursor_ts"), cursorUint64(r, "cursor_seq"), pageSize(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	out := make([]notificationJSON, len(notes))
	for i, n := range notes {
		out[i] = notificationJSON{AuthorTimestamp: n.AuthorTimestamp, Seq: n.Seq, EventID: hexEventID(n.EventID)}
	}
	writeJSON(w, http.StatusOK, struct {
		Notifications []notificationJSON `json:"notifications"`
	}{out})
}

type timelineItemJSON struct {
	EventID   string `json:"event_id"`
	Timestamp uint64 `json:"timestamp"`
}

func toTimelineJSON(items []views.TimelineItem) []timelineItemJSON {
	out := make([]timelineItemJSON, len(items))
	for i, it := range items {
		out[i] = timelineItemJSON{EventID: hexEventID(it.EventID), Timestamp: it.Timestamp}
	}
	return out
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	author, ok := pathAuthor(w, r)
	if !ok {
		return
	}
	items, err := s.views.TimelineFollowing(author, cursorUint64(r, "cursor_ts"), cursorEventID(r, "cursor_id"), pageSize(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Timeline []timelineItemJSON `json:"timeline"`
	}{toTimelineJSON(items)})
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	author, ok := pathAuthor(w, r)
	if !ok {
		return
	}
	items, err := s.views.TimelineNetwork(cursorUint64(r, "cursor_ts"), cursorEventID(r, "cursor_id"), pageSize(r), author)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Timeline []timelineItemJSON `json:"timeline"`
	}{toTimelineJSON(items)})
}
