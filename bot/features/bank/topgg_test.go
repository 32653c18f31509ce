package bank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopGGClient_HasVoted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bots/42/check", r.URL.Path)
		assert.Equal(t, "111", r.URL.Query().Get("userId"))
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voted":1}`))
	}))
	defer server.Close()

	client := NewTopGGClient("test-token", "42").WithBaseURL(server.URL)

	voted, err := client.HasVoted(context.Background(), 111)
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestTopGGClient_HasVoted_NotVoted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voted":0}`))
	}))
	defer server.Close()

	client := NewTopGGClient("test-token", "42").WithBaseURL(server.URL)

	voted, err := client.HasVoted(context.Background(), 111)
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestTopGGClient_IsWeekend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weekend", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"is_weekend":true}`))
	}))
	defer server.Close()

	client := NewTopGGClient("test-token", "42").WithBaseURL(server.URL)

	weekend, err := client.IsWeekend(context.Background())
	require.NoError(t, err)
	assert.True(t, weekend)
}

func TestTopGGClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTopGGClient("bad-token", "42").WithBaseURL(server.URL)

	_, err := client.HasVoted(context.Background(), 111)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
