package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remind/internal/core/reminder"
)

func TestClient_Disabled(t *testing.T) {
	c := NewClient("", Credentials{})
	assert.False(t, c.Enabled())

	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, c.Save(context.Background(), Document{}), ErrNotConfigured)
}

func TestClient_LoadAndSave(t *testing.T) {
	var stored Document
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(stored)
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&stored))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{AccessToken: "tok"})

	doc := Document{Pending: []reminder.Reminder{{
		ID:        1,
		Message:   "ship release",
		Urgency:   reminder.UrgencyNow,
		ListType:  reminder.ListActual,
		CreatedAt: time.Now().UTC(),
	}}}
	require.NoError(t, c.Save(context.Background(), doc))

	got, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Pending, 1)
	assert.Equal(t, "ship release", got.Pending[0].Message)
}

func TestClient_RefreshesExpiredToken(t *testing.T) {
	token := "expired"
	var refreshed bool

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "rtok", r.Form.Get("refresh_token"))
		refreshed = true
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh"})
	}))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(Document{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{
		AccessToken:  token,
		RefreshToken: "rtok",
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     tokenSrv.URL,
	})

	_, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)
}

func TestClient_MissingDocumentIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{AccessToken: "tok"})
	doc, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Pending)
	assert.Empty(t, doc.Completed)
}
