package models

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

// ChatResponse is the chat endpoint payload. RetrievedDocs lists the
// provenance identifiers of the segments used as context, in retrieval rank
// order. Duplicate sources are preserved.
type ChatResponse struct {
	Response      string   `json:"response"`
	RetrievedDocs []string `json:"retrieved_docs"`
}

// AnswerResponse is the synthesizer output before it is shaped into the HTTP
// payload.
type AnswerResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
