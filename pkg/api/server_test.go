package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rostra-dev/rostra/pkg/engine"
	"github.com/rostra-dev/rostra/pkg/events"
	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/views"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return NewServer(engine.New(s, events.NewBroker()), views.New(s)).Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func versioned(extra ...string) map[string]string {
	h := map[string]string{apiVersionHeader: supportedVersion}
	for i := 0; i+1 < len(extra); i += 2 {
		h[extra[i]] = extra[i+1]
	}
	return h
}

func generateIdentity(t *testing.T, h http.Handler) generateIDResponse {
	t.Helper()
	rec := doRequest(t, h, http.MethodGet, "/api/generate-id", versioned(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp generateIDResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGenerateID(t *testing.T) {
	h := newTestServer(t)
	resp := generateIdentity(t, h)
	require.NotEmpty(t, resp.RostraID)
	require.NotEmpty(t, resp.RostraIDSecret)

	_, err := identity.Parse(resp.RostraID)
	require.NoError(t, err)
}

func TestMissingAPIVersionRejected(t *testing.T) {
	h := newTestServer(t)
	rec := doRequest(t, h, http.MethodGet, "/api/generate-id", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeadsEmptyForFreshIdentity(t *testing.T) {
	h := newTestServer(t)
	ident := generateIdentity(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/"+ident.RostraID+"/heads", versioned(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp headsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Heads)
}

func TestPublishSocialPostAndReadHeads(t *testing.T) {
	h := newTestServer(t)
	ident := generateIdentity(t, h)

	headers := versioned(secretHeader, ident.RostraIDSecret)
	body := publishSocialPostRequest{Content: "hello rostra"}
	rec := doRequest(t, h, http.MethodPost, "/api/"+ident.RostraID+"/publish-social-post-managed", headers, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp publishResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.EventID)
	require.Equal(t, []string{resp.EventID}, resp.Heads)

	headsRec := doRequest(t, h, http.MethodGet, "/api/"+ident.RostraID+"/heads", versioned(), nil)
	var headsResp headsResponse
	require.NoError(t, json.Unmarshal(headsRec.Body.Bytes(), &headsResp))
	require.Equal(t, []string{resp.EventID}, headsResp.Heads)
}

func TestPublishWithStaleHeadIs409(t *testing.T) {
	h := newTestServer(t)
	ident := generateIdentity(t, h)
	headers := versioned(secretHeader, ident.RostraIDSecret)

	rec := doRequest(t, h, http.MethodPost, "/api/"+ident.RostraID+"/publish-social-post-managed", headers,
		publishSocialPostRequest{Content: "first"})
	require.Equal(t, http.StatusOK, rec.Code)

	bogus := strings.Repeat("00", 16) // a well-formed but non-current event id
	rec = doRequest(t, h, http.MethodPost, "/api/"+ident.RostraID+"/publish-social-post-managed", headers,
		publishSocialPostRequest{ParentHeadID: &bogus, Content: "second"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestPublishWithWrongSecretIs403(t *testing.T) {
	h := newTestServer(t)
	ident := generateIdentity(t, h)
	other := generateIdentity(t, h)

	headers := versioned(secretHeader, other.RostraIDSecret)
	rec := doRequest(t, h, http.MethodPost, "/api/"+ident.RostraID+"/publish-social-post-managed", headers,
		publishSocialPostRequest{Content: "not yours"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublishWithoutSecretIs401(t *testing.T) {
	h := newTestServer(t)
	ident := generateIdentity(t, h)

	rec := doRequest(t, h, http.MethodPost, "/api/"+ident.RostraID+"/publish-social-post-managed", versioned(),
		publishSocialPostRequest{Content: "no secret"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFollowAndReadFollowees(t *testing.T) {
	h := newTestServer(t)
	alice := generateIdentity(t, h)
	bob := generateIdentity(t, h)

	headers := versioned(secretHeader, alice.RostraIDSecret)
	rec := doRequest(t, h, http.MethodPost, "/api/"+alice.RostraID+"/follow-managed", headers,
		followRequest{Followee: bob.RostraID, FilterMode: "only", PersonaTags: []string{"art"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/"+alice.RostraID+"/followees", versioned(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Followees []followeeJSON `json:"followees"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Followees, 1)
	require.Equal(t, bob.RostraID, resp.Followees[0].Followee)
	require.Equal(t, "only", resp.Followees[0].Mode)
}

func TestHealthAndReady(t *testing.T) {
	h := newTestServer(t)
	rec := doRequest(t, h, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
