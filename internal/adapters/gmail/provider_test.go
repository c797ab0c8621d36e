package gmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type fakeGmail struct {
	t           *testing.T
	messages    map[string]map[string]any
	failMinimal map[string]bool
	gets        atomic.Int32
	minimalGets atomic.Int32
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "Bearer access-token", r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	const prefix = "/gmail/v1/users/me/messages"
	switch {
	case r.URL.Path == prefix:
		assert.Equal(f.t, "3", r.URL.Query().Get("maxResults"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "a"}, {"id": "b"}, {"id": "c"}},
		})
	case strings.HasPrefix(r.URL.Path, prefix+"/"):
		f.gets.Add(1)
		id := strings.TrimPrefix(r.URL.Path, prefix+"/")
		if r.URL.Query().Get("format") == "minimal" {
			f.minimalGets.Add(1)
			if f.failMinimal[id] {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "Insufficient Permission"}}`))
				return
			}
		}
		msg, ok := f.messages[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "Not Found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(msg)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestProvider(t *testing.T, fake *fakeGmail) core.MailProvider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	auth := NewAuthenticator("id", "secret", "http://localhost/cb", zap.NewNop())
	conn := NewConnector(auth, srv.URL+"/", zap.NewNop())
	provider, err := conn.Connect(context.Background(), &core.Credential{AccessToken: "access-token", TokenType: "Bearer"})
	require.NoError(t, err)
	return provider
}

func TestProvider_ReadsMetadata(t *testing.T) {
	fake := &fakeGmail{t: t, messages: map[string]map[string]any{
		"a": {
			"id":      "a",
			"snippet": "Your interview is scheduled",
			"payload": map[string]any{"headers": []map[string]string{
				{"name": "From", "value": "Alice <a@x.com>"},
				{"name": "Subject", "value": "Interview"},
			}},
		},
	}}
	provider := newTestProvider(t, fake)
	ctx := context.Background()

	ids, err := provider.ListMessageIDs(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	headers, err := provider.GetHeaders(ctx, "a", "From", "Subject")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"From": "Alice <a@x.com>", "Subject": "Interview"}, headers)

	snippet, err := provider.GetSnippet(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Your interview is scheduled", snippet)
	assert.Equal(t, int32(2), fake.gets.Load())
	assert.Equal(t, int32(1), fake.minimalGets.Load(), "snippet is read with format=minimal")
}

func TestProvider_SnippetReadFailsIndependently(t *testing.T) {
	fake := &fakeGmail{
		t: t,
		messages: map[string]map[string]any{
			"a": {"id": "a", "snippet": "s1", "payload": map[string]any{"headers": []map[string]string{
				{"name": "From", "value": "Alice <a@x.com>"},
			}}},
			"c": {"id": "c", "snippet": "s3", "payload": map[string]any{"headers": []map[string]string{
				{"name": "From", "value": "Bob <b@x.com>"},
			}}},
		},
		failMinimal: map[string]bool{"a": true},
	}
	provider := newTestProvider(t, fake)

	headers, err := provider.GetHeaders(context.Background(), "a", "From")
	require.NoError(t, err)
	assert.Equal(t, "Alice <a@x.com>", headers["From"])
	_, err = provider.GetSnippet(context.Background(), "a")
	assert.Error(t, err)

	result, err := core.NewFetchAggregator(zap.NewNop(), 3, 1).Fetch(context.Background(), provider)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "c", result.Records[0].ID)
	assert.Equal(t, "s3", result.Records[0].Snippet)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "a", result.Skipped[0].ID)
	assert.Contains(t, result.Skipped[0].Reason, "failed to get snippet")
	assert.Equal(t, "b", result.Skipped[1].ID)
}

func TestProvider_MissingPayload(t *testing.T) {
	fake := &fakeGmail{t: t, messages: map[string]map[string]any{
		"b": {"id": "b", "snippet": "no payload"},
	}}
	provider := newTestProvider(t, fake)

	_, err := provider.GetHeaders(context.Background(), "b", "From")
	assert.ErrorIs(t, err, errNoPayload)
}

func TestProvider_NotFound(t *testing.T) {
	provider := newTestProvider(t, &fakeGmail{t: t})

	_, err := provider.GetHeaders(context.Background(), "missing", "From")
	assert.Error(t, err)
}

func TestProvider_WithFetchAggregator(t *testing.T) {
	fake := &fakeGmail{t: t, messages: map[string]map[string]any{
		"a": {"id": "a", "snippet": "s1", "payload": map[string]any{"headers": []map[string]string{
			{"name": "From", "value": "Alice <a@x.com>"},
		}}},
		"c": {"id": "c", "snippet": "s3", "payload": map[string]any{"headers": []map[string]string{
			{"name": "From", "value": `"Alice" <a@x.com>`},
			{"name": "Subject", "value": "Again"},
		}}},
	}}
	provider := newTestProvider(t, fake)

	result, err := core.NewFetchAggregator(zap.NewNop(), 3, 2).Fetch(context.Background(), provider)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "a", result.Records[0].ID)
	assert.Equal(t, core.DefaultSubject, result.Records[0].Subject)
	assert.Equal(t, 2, result.Records[0].SenderCount)
	assert.Equal(t, "c", result.Records[1].ID)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "b", result.Skipped[0].ID)
}

func TestAuthenticator_AuthCodeURL(t *testing.T) {
	auth := NewAuthenticator("client-id", "secret", "http://localhost:8000/auth/callback", zap.NewNop())

	u, err := url.Parse(auth.AuthCodeURL("state-123"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "https://www.googleapis.com/auth/gmail.readonly", q.Get("scope"))
	assert.Equal(t, "http://localhost:8000/auth/callback", q.Get("redirect_uri"))
}

func TestAuthenticator_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "at", "refresh_token": "rt", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer srv.Close()

	auth := NewAuthenticator("id", "secret", "http://localhost/cb", zap.NewNop())
	auth.oauthCfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}

	cred, err := auth.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "at", cred.AccessToken)
	assert.Equal(t, "rt", cred.RefreshToken)
	assert.False(t, cred.Expiry.IsZero())

	_, err = auth.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}
