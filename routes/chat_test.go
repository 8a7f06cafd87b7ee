package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/models"
	"enterprise-knowledge-platform/services"
	"enterprise-knowledge-platform/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		CollectionName: "kb",
		RetrievalK:     3,
		RequestTimeout: 5,
		DataFolder:     "data",
	}
}

// unitEmbedder maps every text to the same unit vector, so any indexed entry
// matches any query with similarity 1.
type unitEmbedder struct {
	err error
}

func (e *unitEmbedder) Embed(context.Context, string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

// fixedSearcher returns a canned retrieval result.
type fixedSearcher struct {
	results []models.RetrievedSegment
	err     error
}

func (s *fixedSearcher) SimilaritySearch(_ context.Context, _ string, _ []float32, k int) ([]models.RetrievedSegment, error) {
	if s.err != nil {
		return nil, s.err
	}
	results := s.results
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// cannedLLM answers every prompt with the same text.
type cannedLLM struct {
	answer string
	err    error
}

func (l *cannedLLM) Generate(context.Context, string) (string, error) {
	return l.answer, l.err
}

func newChatRouter(searcher *fixedSearcher, embedder *unitEmbedder, llm *cannedLLM) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	retriever := services.NewRetriever(embedder, searcher, 3)
	SetupChatRoutes(router, testConfig(), retriever, services.NewSynthesizer(llm))
	return router
}

func postChat(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatEndpointAnswersWithCitations(t *testing.T) {
	searcher := &fixedSearcher{results: []models.RetrievedSegment{
		{Content: "Employees get 20 days of paid leave.", Metadata: map[string]any{"source": "handbook.pdf"}, Similarity: 0.9},
		{Content: "Leave requests go through the portal.", Metadata: map[string]any{"source": "handbook.pdf"}, Similarity: 0.8},
	}}
	router := newChatRouter(searcher, &unitEmbedder{}, &cannedLLM{answer: "20 days."})

	w := postChat(t, router, `{"query": "How many leave days?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "20 days.", resp.Response)
	assert.Equal(t, []string{"handbook.pdf", "handbook.pdf"}, resp.RetrievedDocs)
}

func TestChatEndpointEmptyKnowledgeBase(t *testing.T) {
	router := newChatRouter(&fixedSearcher{}, &unitEmbedder{}, &cannedLLM{answer: "unused"})

	w := postChat(t, router, `{"query": "Anything?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, services.RefusalMessage, resp.Response)
	assert.Empty(t, resp.RetrievedDocs)
}

func TestChatEndpointRejectsMissingQuery(t *testing.T) {
	router := newChatRouter(&fixedSearcher{}, &unitEmbedder{}, &cannedLLM{})

	for _, body := range []string{`{}`, `{"query": ""}`, `not json`} {
		w := postChat(t, router, body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)

		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "bad_request", resp.ErrorCode)
	}
}

func TestChatEndpointRetrievalFailure(t *testing.T) {
	router := newChatRouter(&fixedSearcher{}, &unitEmbedder{err: fmt.Errorf("embedding backend down")}, &cannedLLM{})

	w := postChat(t, router, `{"query": "Anything?"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.ErrorCode)
	assert.Contains(t, resp.Message, "embedding backend down")
}

func TestChatEndpointSynthesisFailure(t *testing.T) {
	searcher := &fixedSearcher{results: []models.RetrievedSegment{
		{Content: "context", Metadata: map[string]any{"source": "doc.pdf"}},
	}}
	router := newChatRouter(searcher, &unitEmbedder{}, &cannedLLM{err: fmt.Errorf("model overloaded")})

	w := postChat(t, router, `{"query": "Anything?"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "answer synthesis failed")
}
