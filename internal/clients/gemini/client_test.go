package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kirkidoo/Qualipieces/internal/models"
)

func candidateResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func TestOptimizeDescriptionReturnsGeneratedHTML(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		var req generateRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Contents, 1)
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Write([]byte(candidateResponse("  <p>Great brake pad</p>\n")))
	}))
	defer srv.Close()

	client := NewClient("test-key", 0, zap.NewNop())
	client.SetBaseURL(srv.URL)

	html, err := client.OptimizeDescription(context.Background(), models.CatalogItem{
		ItemNumber:    "QP-042",
		DescriptionEN: "Brake pad",
		Category:      "Brakes",
	})
	require.NoError(t, err)

	assert.Equal(t, "<p>Great brake pad</p>", html)
	assert.Equal(t, "/models/gemini-3-flash-preview:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPrompt, "QP-042")
	assert.Contains(t, gotPrompt, "Brake pad")
}

func TestOptimizeDescriptionErrorOnAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", 0, zap.NewNop())
	client.SetBaseURL(srv.URL)

	_, err := client.OptimizeDescription(context.Background(), models.CatalogItem{ItemNumber: "QP-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestOptimizeDescriptionErrorOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", 0, zap.NewNop())
	client.SetBaseURL(srv.URL)

	_, err := client.OptimizeDescription(context.Background(), models.CatalogItem{ItemNumber: "QP-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestOptimizeDescriptionErrorOnBlankText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateResponse("   ")))
	}))
	defer srv.Close()

	client := NewClient("test-key", 0, zap.NewNop())
	client.SetBaseURL(srv.URL)

	_, err := client.OptimizeDescription(context.Background(), models.CatalogItem{ItemNumber: "QP-1"})
	require.Error(t, err)
}
