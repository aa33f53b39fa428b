package connector_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openrack-io/redfish-client/internal/connector"
	"github.com/openrack-io/redfish-client/pkg/redfish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnector_SendsDefaultHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "4.0", r.Header.Get("OData-Version"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	conn := connector.New(server.URL)

	resp, err := conn.Get(context.Background(), "/redfish/v1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestConnector_ExtraDefaultHeadersAndUserAgent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rack-7", r.Header.Get("X-Rack"))
		assert.Equal(t, "redfish-cli/1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	conn := connector.New(server.URL,
		connector.WithDefaultHeaders(map[string]string{"X-Rack": "rack-7"}),
		connector.WithUserAgent("redfish-cli/1.0"),
	)

	_, err := conn.Get(context.Background(), "/redfish/v1")
	require.NoError(t, err)
}

func TestConnector_EncodesPayloadAsJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ResetType":"On"}`, string(body))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	conn := connector.New(server.URL)

	resp, err := conn.Post(context.Background(), "/redfish/v1/Systems/1/Actions/Reset", map[string]string{"ResetType": "On"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
}

func TestConnector_GetCaching(t *testing.T) {
	t.Parallel()
	t.Run("repeated gets hit the network once", func(t *testing.T) {
		t.Parallel()

		var requests int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"Name":"System"}`))
		}))
		defer server.Close()

		conn := connector.New(server.URL)

		first, err := conn.Get(context.Background(), "/redfish/v1/Systems/1")
		require.NoError(t, err)

		second, err := conn.Get(context.Background(), "/redfish/v1/Systems/1")
		require.NoError(t, err)

		assert.Equal(t, first.Body, second.Body)
		assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
	})

	t.Run("distinct query strings are distinct entries", func(t *testing.T) {
		t.Parallel()

		var requests int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		conn := connector.New(server.URL)

		_, err := conn.Get(context.Background(), "/redfish/v1/Systems?$skip=0")
		require.NoError(t, err)

		_, err = conn.Get(context.Background(), "/redfish/v1/Systems?$skip=50")
		require.NoError(t, err)

		assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
	})

	t.Run("error responses are never cached", func(t *testing.T) {
		t.Parallel()

		var requests int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		conn := connector.New(server.URL)

		_, err := conn.Get(context.Background(), "/redfish/v1/Systems/9")
		require.NoError(t, err)

		_, err = conn.Get(context.Background(), "/redfish/v1/Systems/9")
		require.NoError(t, err)

		assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
	})

	t.Run("mutating verbs bypass the cache", func(t *testing.T) {
		t.Parallel()

		var posts int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				atomic.AddInt64(&posts, 1)
			}

			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		conn := connector.New(server.URL)

		_, err := conn.Post(context.Background(), "/target", nil)
		require.NoError(t, err)

		_, err = conn.Post(context.Background(), "/target", nil)
		require.NoError(t, err)

		assert.Equal(t, int64(2), atomic.LoadInt64(&posts))
	})

	t.Run("no-op cache disables caching entirely", func(t *testing.T) {
		t.Parallel()

		var requests int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		conn := connector.New(server.URL, connector.WithCache(redfish.NewNoOpCache()))

		_, err := conn.Get(context.Background(), "/redfish/v1")
		require.NoError(t, err)

		_, err = conn.Get(context.Background(), "/redfish/v1")
		require.NoError(t, err)

		assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
	})
}

func TestConnector_Reset(t *testing.T) {
	t.Parallel()

	var requests int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	conn := connector.New(server.URL)

	_, err := conn.Get(context.Background(), "/a")
	require.NoError(t, err)
	_, err = conn.Get(context.Background(), "/b")
	require.NoError(t, err)

	// Evicting /a forces it back to the network while /b stays cached.
	require.NoError(t, conn.Reset(context.Background(), "/a"))

	_, err = conn.Get(context.Background(), "/a")
	require.NoError(t, err)
	_, err = conn.Get(context.Background(), "/b")
	require.NoError(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&requests))

	// An empty path clears everything.
	require.NoError(t, conn.Reset(context.Background(), ""))

	_, err = conn.Get(context.Background(), "/b")
	require.NoError(t, err)
	assert.Equal(t, int64(4), atomic.LoadInt64(&requests))
}

func TestConnector_SessionLogin(t *testing.T) {
	t.Parallel()
	t.Run("successful login attaches the token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && r.URL.Path == "/redfish/v1/SessionService/Sessions" {
				var credentials map[string]string

				require.NoError(t, json.NewDecoder(r.Body).Decode(&credentials))
				assert.Equal(t, "admin", credentials["UserName"])
				assert.Equal(t, "secret", credentials["Password"])

				w.Header().Set("X-Auth-Token", "token-9")
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"@odata.id":"/redfish/v1/SessionService/Sessions/9"}`))

				return
			}

			assert.Equal(t, "token-9", r.Header.Get("X-Auth-Token"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:    "admin",
			Password:    "secret",
			SessionPath: "/redfish/v1/SessionService/Sessions",
		})

		require.NoError(t, conn.Login(context.Background()))

		_, err := conn.Get(context.Background(), "/redfish/v1/Systems")
		require.NoError(t, err)
	})

	t.Run("session id falls back to the location header", func(t *testing.T) {
		t.Parallel()

		var deletedPath string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				w.Header().Set("X-Auth-Token", "token-1")
				w.Header().Set("Location", "https://bmc.example.com/redfish/v1/SessionService/Sessions/42")
				w.WriteHeader(http.StatusCreated)
			case http.MethodDelete:
				deletedPath = r.URL.Path
				w.WriteHeader(http.StatusNoContent)
			}
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:    "admin",
			Password:    "secret",
			SessionPath: "/redfish/v1/SessionService/Sessions",
		})

		require.NoError(t, conn.Login(context.Background()))
		require.NoError(t, conn.Logout(context.Background()))
		assert.Equal(t, "/redfish/v1/SessionService/Sessions/42", deletedPath)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:    "admin",
			Password:    "wrong",
			SessionPath: "/redfish/v1/SessionService/Sessions",
		})

		err := conn.Login(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, redfish.ErrInvalidCredentials)
	})

	t.Run("created session without a token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:    "admin",
			Password:    "secret",
			SessionPath: "/redfish/v1/SessionService/Sessions",
		})

		err := conn.Login(context.Background())
		assert.ErrorIs(t, err, redfish.ErrNoSessionToken)
	})
}

func TestConnector_BasicLogin(t *testing.T) {
	t.Parallel()
	t.Run("successful probe keeps the header", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// admin:secret
			assert.Equal(t, "Basic YWRtaW46c2VjcmV0", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:     "admin",
			Password:     "secret",
			AuthTestPath: "/redfish/v1/Systems",
		})

		require.NoError(t, conn.Login(context.Background()))

		_, err := conn.Get(context.Background(), "/redfish/v1/Chassis")
		require.NoError(t, err)
	})

	t.Run("failed probe removes the header", func(t *testing.T) {
		t.Parallel()

		var sawCredentials []string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawCredentials = append(sawCredentials, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:     "admin",
			Password:     "wrong",
			AuthTestPath: "/redfish/v1/Systems",
		})

		err := conn.Login(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, redfish.ErrInvalidCredentials)

		// The rejected header must not leak onto later requests.
		_, err = conn.Get(context.Background(), "/redfish/v1")
		require.NoError(t, err)

		require.Len(t, sawCredentials, 2)
		assert.NotEmpty(t, sawCredentials[0])
		assert.Empty(t, sawCredentials[1])
	})
}

func TestConnector_UnauthorizedRetry(t *testing.T) {
	t.Parallel()
	t.Run("one re-login and one retry on 401", func(t *testing.T) {
		t.Parallel()

		var systemGets, sessionPosts int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && r.URL.Path == "/redfish/v1/SessionService/Sessions" {
				atomic.AddInt64(&sessionPosts, 1)
				w.Header().Set("X-Auth-Token", "fresh-token")
				w.WriteHeader(http.StatusCreated)

				return
			}

			atomic.AddInt64(&systemGets, 1)

			if r.Header.Get("X-Auth-Token") != "fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"Name":"System"}`))
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:    "admin",
			Password:    "secret",
			SessionPath: "/redfish/v1/SessionService/Sessions",
		})

		resp, err := conn.Get(context.Background(), "/redfish/v1/Systems/1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, int64(2), atomic.LoadInt64(&systemGets))
		assert.Equal(t, int64(1), atomic.LoadInt64(&sessionPosts))
	})

	t.Run("a second 401 surfaces to the caller", func(t *testing.T) {
		t.Parallel()

		var systemGets, sessionPosts int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				atomic.AddInt64(&sessionPosts, 1)
				w.Header().Set("X-Auth-Token", "token")
				w.WriteHeader(http.StatusCreated)

				return
			}

			atomic.AddInt64(&systemGets, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		conn := connector.New(server.URL)
		conn.SetAuthInfo(redfish.AuthInfo{
			Username:    "admin",
			Password:    "secret",
			SessionPath: "/redfish/v1/SessionService/Sessions",
		})

		resp, err := conn.Get(context.Background(), "/redfish/v1/Systems/1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Equal(t, int64(2), atomic.LoadInt64(&systemGets))
		assert.Equal(t, int64(1), atomic.LoadInt64(&sessionPosts))
	})

	t.Run("no credentials means no retry", func(t *testing.T) {
		t.Parallel()

		var requests int64

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		conn := connector.New(server.URL)

		resp, err := conn.Get(context.Background(), "/redfish/v1/Systems/1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
	})
}

func TestConnector_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var requests int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&requests, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	conn := connector.New(server.URL, connector.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

	resp, err := conn.Get(context.Background(), "/redfish/v1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
}

func TestConnector_ResponseHeadersAreFlattened(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	conn := connector.New(server.URL)

	resp, err := conn.Get(context.Background(), "/redfish/v1")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, resp.Header("etag"))
}
