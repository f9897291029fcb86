package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/selfbot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL)
	c.retrier = retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		Jitter:        time.Millisecond,
	})
	return c
}

func TestListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/participants", r.URL.Path)
		fmt.Fprintln(w, `[
			{"userId":1,"userName":"neeli_k","fullName":"Neeli Krishna","department":"Engineering","points":1000},
			{"userId":2,"userName":"asha_r","fullName":"Asha Rao","department":"Design","points":800}
		]`)
	}))
	defer srv.Close()

	users, err := newTestClient(srv.URL).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].UserID)
	assert.Equal(t, "neeli_k", users[0].Username)
	assert.Equal(t, "Neeli Krishna", users[0].FullName)
	assert.Equal(t, int64(1000), users[0].Points)
}

func TestListUsersRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusInternalServerError)
			return
		}
		fmt.Fprintln(w, `[{"userId":1,"userName":"neeli_k","fullName":"Neeli Krishna"}]`)
	}))
	defer srv.Close()

	users, err := newTestClient(srv.URL).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/participants/7":
			fmt.Fprintln(w, `{"userId":7,"userName":"asha_r","fullName":"Asha Rao","department":"Design"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	user, err := client.GetUser(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Asha Rao", user.FullName)

	// Missing users are nil, not an error.
	user, err = client.GetUser(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRecognize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recognize", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, "Successfully recognized Neeli Krishna")
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Recognize(context.Background(), 2, "neeli_k", "great demo", 50)
	require.NoError(t, err)
	assert.Equal(t, "Successfully recognized Neeli Krishna", result)

	assert.Equal(t, float64(2), got["senderId"])
	assert.Equal(t, "neeli_k", got["receiverUsername"])
	assert.Equal(t, "great demo", got["comment"])
	assert.Equal(t, float64(50), got["points"])
}

func TestRecognizeSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient points", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Recognize(context.Background(), 2, "neeli_k", "x", 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient points")
}

func TestGetRecognitionHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recognize/received/7", r.URL.Path)
		fmt.Fprintln(w, `[
			{"points":50,"comment":"Great work","timestamp":"2026-08-01T10:00:00Z","sender":{"fullName":"Asha Rao"}}
		]`)
	}))
	defer srv.Close()

	history, err := newTestClient(srv.URL).GetRecognitionHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(50), history[0].Points)
	assert.Equal(t, "Asha Rao", history[0].Sender.FullName)
}

func TestLogMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/comm-log", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).LogMessage(context.Background(), 7, "neeli_k", "user", "hello")
	require.NoError(t, err)
	assert.Equal(t, float64(7), got["userId"])
	assert.Equal(t, "neeli_k", got["userName"])
	assert.Equal(t, "user", got["role"])
	assert.Equal(t, "hello", got["content"])
}

func TestLogMessageSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).LogMessage(context.Background(), 7, "neeli_k", "user", "hello")
	require.Error(t, err)
}
