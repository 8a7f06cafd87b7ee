package services

import (
	"context"
	"fmt"
	"strings"

	"enterprise-knowledge-platform/models"
)

// RefusalMessage is the fixed string the assistant emits when the retrieved
// context cannot answer the question.
const RefusalMessage = "Data not available in knowledge base."

const groundedPromptTemplate = `You are a Corporate AI Assistant. Answer the question based ONLY on the following context.
If the answer is not in the context, strictly state: "%s"

<context>
%s
</context>

Question: %s`

// TextGenerator turns a prompt into model text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer constructs a single grounded prompt from the retrieved
// segments and invokes the language model once per query. Citations are
// derived mechanically from the retrieval result, never parsed out of the
// model's answer; duplicate sources are preserved in rank order.
type Synthesizer struct {
	llm TextGenerator
}

func NewSynthesizer(llm TextGenerator) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize answers the query using only the retrieved segments. With no
// retrieved context the refusal string is returned directly and no model
// call is spent. Model failures are wrapped and propagated, not retried and
// not translated into the refusal string.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, retrieved []models.RetrievedSegment) (*models.AnswerResponse, error) {
	sources := make([]string, 0, len(retrieved))
	for _, seg := range retrieved {
		sources = append(sources, seg.Source())
	}

	if len(retrieved) == 0 {
		return &models.AnswerResponse{Answer: RefusalMessage, Sources: sources}, nil
	}

	answer, err := s.llm.Generate(ctx, BuildGroundedPrompt(query, retrieved))
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	return &models.AnswerResponse{Answer: strings.TrimSpace(answer), Sources: sources}, nil
}

// BuildGroundedPrompt concatenates the retrieved segment texts as context
// and instructs the model to answer from that context alone.
func BuildGroundedPrompt(query string, retrieved []models.RetrievedSegment) string {
	texts := make([]string, len(retrieved))
	for i, seg := range retrieved {
		texts[i] = seg.Content
	}
	return fmt.Sprintf(groundedPromptTemplate, RefusalMessage, strings.Join(texts, "\n\n"), query)
}
