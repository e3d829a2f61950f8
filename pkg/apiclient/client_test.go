package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow/pkg/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc, session SessionProvider) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, session, logger.New("error"))
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, StaticToken("secret-token"))

	err := client.Get(context.Background(), "/chat/threads", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClientOmitsAuthWithoutSession(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, nil)

	err := client.Get(context.Background(), "/health", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientSurfacesDetailError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "Messaging restricted."}`))
	}, nil)

	err := client.Post(context.Background(), "/chat/send", map[string]string{"content": "hi"}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Messaging restricted.", apiErr.Detail)
}

func TestClientSurfacesErrorFieldWithoutDetail(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "messaging restricted"}`))
	}, nil)

	err := client.Post(context.Background(), "/chat/send", map[string]string{"content": "hi"}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "messaging restricted", apiErr.Detail)
}

func TestClientPrefersDetailOverError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "from detail", "error": "from error"}`))
	}, nil)

	err := client.Get(context.Background(), "/chat/threads", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "from detail", apiErr.Detail)
}

func TestClientGenericErrorWithoutDetail(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}, nil)

	err := client.Get(context.Background(), "/chat/threads", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "Request failed", apiErr.Detail)
}

func TestClientDecodesResponse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success"}`))
	}, nil)

	var out struct {
		Status string `json:"status"`
	}
	err := client.Get(context.Background(), "/chat/threads", &out)
	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
}

func TestRefreshingSessionCachesUntilExpiry(t *testing.T) {
	calls := 0
	session := NewRefreshingSession(func(ctx context.Context) (string, time.Time, error) {
		calls++
		return "token-1", time.Now().Add(time.Hour), nil
	})

	for i := 0; i < 3; i++ {
		token, err := session.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
	}

	assert.Equal(t, 1, calls)
}

func TestRefreshingSessionRefreshesExpiredToken(t *testing.T) {
	calls := 0
	session := NewRefreshingSession(func(ctx context.Context) (string, time.Time, error) {
		calls++
		// Токен истекает сразу - каждый вызов должен обновлять
		return "token", time.Now(), nil
	})

	_, err := session.Token(context.Background())
	require.NoError(t, err)
	_, err = session.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}
