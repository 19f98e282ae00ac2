package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto-macro-dashboard/internal/domain"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"
)

func TestAskHappyPath(t *testing.T) {
	llm := &stubLLMClient{
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "MVRV says mid-cycle"}},
			},
		},
	}
	store := &stubConvStore{}
	dashboard := &stubDashboard{
		caps: &domain.MarketCapSnapshot{BTCPrice: 60_000, BTCMarketCap: 1.2e12, GoldPrice: 2_000, GoldMarketCap: 1.3e13},
	}

	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		llm, dashboard, store, "gpt-4o-mini", 20,
	)

	reply, err := svc.Ask(context.Background(), 123, "Where are we in the cycle?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "MVRV says mid-cycle" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	// Verify messages were stored (user + assistant)
	if len(store.messages) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(store.messages))
	}
	if store.messages[0].role != "user" {
		t.Fatalf("expected first stored message role=user, got %s", store.messages[0].role)
	}
	if store.messages[1].role != "assistant" {
		t.Fatalf("expected second stored message role=assistant, got %s", store.messages[1].role)
	}
}

func TestAskLLMError(t *testing.T) {
	llm := &stubLLMClient{err: errors.New("api down")}
	store := &stubConvStore{}
	dashboard := &stubDashboard{caps: &domain.MarketCapSnapshot{}}

	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		llm, dashboard, store, "gpt-4o-mini", 20,
	)

	_, err := svc.Ask(context.Background(), 123, "What do flows look like?")
	if err == nil {
		t.Fatal("expected error from LLM failure")
	}
	// User message should still have been stored
	if len(store.messages) != 1 || store.messages[0].role != "user" {
		t.Fatalf("expected user message to be stored despite LLM error, got %d messages", len(store.messages))
	}
}

func TestAskConversationStoreFailureNonFatal(t *testing.T) {
	llm := &stubLLMClient{
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "response"}},
			},
		},
	}
	store := &stubConvStore{appendErr: errors.New("redis down")}
	dashboard := &stubDashboard{caps: &domain.MarketCapSnapshot{}}

	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		llm, dashboard, store, "gpt-4o-mini", 20,
	)

	reply, err := svc.Ask(context.Background(), 123, "test")
	if err != nil {
		t.Fatalf("store failure should be non-fatal, got: %v", err)
	}
	if reply != "response" {
		t.Fatalf("expected 'response', got %q", reply)
	}
}

func TestAskContextGatheringFailure(t *testing.T) {
	llm := &stubLLMClient{
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "no data available"}},
			},
		},
	}
	store := &stubConvStore{}
	dashboard := &stubDashboard{err: errors.New("every upstream down")}

	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		llm, dashboard, store, "gpt-4o-mini", 20,
	)

	reply, err := svc.Ask(context.Background(), 123, "What looks good?")
	if err != nil {
		t.Fatalf("context failure should be non-fatal, got: %v", err)
	}
	if reply != "no data available" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestAskIncludesHistory(t *testing.T) {
	llm := &stubLLMClient{
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "as I said"}},
			},
		},
	}
	store := &stubConvStore{
		history: []domain.ConversationMessage{
			{Role: "user", Content: "first question"},
			{Role: "assistant", Content: "first answer"},
		},
	}
	dashboard := &stubDashboard{caps: &domain.MarketCapSnapshot{}}

	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		llm, dashboard, store, "gpt-4o-mini", 20,
	)

	if _, err := svc.Ask(context.Background(), 123, "again?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// system prompt + 2 history messages
	if got := len(llm.lastParams.Messages); got != 3 {
		t.Fatalf("expected 3 messages sent to LLM, got %d", got)
	}
}

func TestAskEmptyChoices(t *testing.T) {
	llm := &stubLLMClient{response: &openai.ChatCompletion{}}
	store := &stubConvStore{}
	dashboard := &stubDashboard{caps: &domain.MarketCapSnapshot{}}

	svc := NewAdvisorService(
		trace.NewNoopTracerProvider().Tracer("test"),
		llm, dashboard, store, "gpt-4o-mini", 20,
	)

	if _, err := svc.Ask(context.Background(), 123, "hello"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

type stubLLMClient struct {
	response   *openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

type storedMessage struct {
	chatID  int64
	role    string
	content string
}

type stubConvStore struct {
	messages  []storedMessage
	history   []domain.ConversationMessage
	appendErr error
}

func (s *stubConvStore) AppendMessage(ctx context.Context, chatID int64, role, content string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.messages = append(s.messages, storedMessage{chatID: chatID, role: role, content: content})
	return nil
}

func (s *stubConvStore) RecentMessages(ctx context.Context, chatID int64, limit int) ([]domain.ConversationMessage, error) {
	return s.history, nil
}

type stubDashboard struct {
	caps *domain.MarketCapSnapshot
	mvrv []domain.MVRVPoint
	ahr  []domain.AHRPoint
	err  error
}

func (s *stubDashboard) GetMarketCaps(ctx context.Context) (*domain.MarketCapSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.caps, nil
}

func (s *stubDashboard) GetMVRV(ctx context.Context, start time.Time) ([]domain.MVRVPoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.mvrv, nil
}

func (s *stubDashboard) GetAHR999(ctx context.Context) ([]domain.AHRPoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ahr, nil
}

func (s *stubDashboard) GetETFFlows(ctx context.Context, asset domain.FlowAsset) ([]domain.ETFFlowPoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}
