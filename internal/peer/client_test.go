package peer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/finance/categories":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"count":2}`))
		case "/notifications":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if r.Header.Get("Content-Type") != "application/json" || body["title"] != "Goal Updated" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"success":true}`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", 100*time.Millisecond)

	t.Run("should decode GET responses", func(t *testing.T) {
		var out struct {
			Success bool `json:"success"`
			Count   int  `json:"count"`
		}
		require.NoError(t, client.Get(context.Background(), "/finance/categories", &out))
		assert.True(t, out.Success)
		assert.Equal(t, 2, out.Count)
	})

	t.Run("should send JSON bodies", func(t *testing.T) {
		err := client.Post(context.Background(), "/notifications", map[string]string{"title": "Goal Updated"}, nil)
		assert.NoError(t, err)
	})

	t.Run("should report non-2xx answers as StatusError", func(t *testing.T) {
		err := client.Get(context.Background(), "/missing", nil)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.Status)
	})

	t.Run("should give up after the client timeout", func(t *testing.T) {
		err := client.Get(context.Background(), "/slow", nil)
		assert.Error(t, err)
	})
}
