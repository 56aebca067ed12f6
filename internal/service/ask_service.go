package service

import (
	"context"
	"fmt"
	"strings"

	"docvault-go/internal/errs"
	"docvault-go/internal/model"
	"docvault-go/pkg/llm"
	"docvault-go/pkg/log"
)

const askSystemPrompt = "You are a helpful assistant that answers questions " +
	"using only the provided document excerpts. If the excerpts do not " +
	"contain the answer, say so instead of guessing."

// AskRequest is the question-answering request. Context excerpts may be
// supplied by the caller (typically the texts of a previous search); when
// absent, the service retrieves its own.
type AskRequest struct {
	Query   string   `json:"query"`
	Context []string `json:"context"`
}

// AskAnswer is the synthesized answer together with the excerpts that
// grounded it.
type AskAnswer struct {
	Answer  string   `json:"answer"`
	Context []string `json:"context,omitempty"`
}

// AskService answers free-form questions over the indexed documents.
type AskService interface {
	Ask(ctx context.Context, req AskRequest) (*AskAnswer, error)
}

type askService struct {
	search     SearchService
	llmClient  llm.Client
	maxContext int
}

// NewAskService creates a new AskService instance. maxContext bounds how
// many excerpts feed the prompt.
func NewAskService(search SearchService, llmClient llm.Client, maxContext int) AskService {
	if maxContext <= 0 {
		maxContext = 5
	}
	return &askService{
		search:     search,
		llmClient:  llmClient,
		maxContext: maxContext,
	}
}

func (s *askService) Ask(ctx context.Context, req AskRequest) (*AskAnswer, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, &errs.ValidationError{Field: "query", Reason: "must not be empty"}
	}

	excerpts := req.Context
	if len(excerpts) == 0 {
		results, err := s.search.Search(ctx, model.QueryRequest{Query: req.Query})
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			excerpts = append(excerpts, r.Text)
		}
	}
	if len(excerpts) == 0 {
		return &AskAnswer{Answer: "No relevant documents were found for this question."}, nil
	}
	if len(excerpts) > s.maxContext {
		excerpts = excerpts[:s.maxContext]
	}
	log.Infof("[AskService] Synthesizing answer, query: '%s', context excerpts: %d", req.Query, len(excerpts))

	var b strings.Builder
	for i, e := range excerpts {
		fmt.Fprintf(&b, "[%d]\n%s\n\n", i+1, e)
	}
	fmt.Fprintf(&b, "Question: %s", req.Query)

	answer, err := s.llmClient.Complete(ctx, askSystemPrompt, b.String())
	if err != nil {
		log.Errorf("[AskService] Answer synthesis failed: %v", err)
		return nil, err
	}
	return &AskAnswer{Answer: answer, Context: excerpts}, nil
}
