package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
	"github.com/kailas-cloud/wayfarer/internal/usecase/budget"
)

func TestMain(m *testing.M) {
	metrics.RegisterBudgetMetrics()
	os.Exit(m.Run())
}

type mockCompleter struct {
	result domain.CompletionResult
	err    error
	calls  int
}

func (m *mockCompleter) Complete(_ context.Context, _ string) (domain.CompletionResult, error) {
	m.calls++
	return m.result, m.err
}

func TestInstrumentedCompleter_Success(t *testing.T) {
	inner := &mockCompleter{result: domain.CompletionResult{
		Text:             "Visit the Louvre.",
		PromptTokens:     50,
		CompletionTokens: 10,
		TotalTokens:      60,
	}}
	p := NewInstrumentedCompleter(inner, "test", "test-model", nil, zap.NewNop())

	result, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "Visit the Louvre." {
		t.Fatalf("unexpected text: %q", result.Text)
	}
	if result.TotalTokens != 60 {
		t.Fatalf("expected 60 total tokens, got %d", result.TotalTokens)
	}
}

func TestInstrumentedCompleter_Error(t *testing.T) {
	inner := &mockCompleter{err: fmt.Errorf("api error")}
	p := NewInstrumentedCompleter(inner, "test-err", "test-model-e", nil, zap.NewNop())

	_, err := p.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedCompleter_BudgetRejection(t *testing.T) {
	bt := budget.NewTracker("test-chat-budget", 100, 0, budget.ActionReject, zap.NewNop())
	bt.Record(100)

	inner := &mockCompleter{result: domain.CompletionResult{Text: "answer"}}
	p := NewInstrumentedCompleter(inner, "test-chat-budget", "test-model-b", bt, zap.NewNop())

	_, err := p.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error when budget exceeded")
	}
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected domain.ErrQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner completer should not be called on rejection, got %d calls", inner.calls)
	}
}

func TestInstrumentedCompleter_RecordsBudget(t *testing.T) {
	bt := budget.NewTracker("test-chat-rec", 1000000, 10000000, budget.ActionReject, zap.NewNop())

	inner := &mockCompleter{result: domain.CompletionResult{
		Text:             "answer",
		PromptTokens:     400,
		CompletionTokens: 100,
		TotalTokens:      500,
	}}
	p := NewInstrumentedCompleter(inner, "test-chat-rec", "test-model-r", bt, zap.NewNop())

	initialDaily := bt.RemainingDaily()

	_, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := initialDaily - bt.RemainingDaily(); got != 500 {
		t.Errorf("expected daily remaining to decrease by 500, got %d", got)
	}
}

func TestInstrumentedCompleter_SharedBudgetWithEmbedding(t *testing.T) {
	// One tracker can back both decorators; chat usage counts against
	// the same pool an embedder draws from.
	bt := budget.NewTracker("test-shared", 100, 0, budget.ActionReject, zap.NewNop())
	bt.Record(60)

	inner := &mockCompleter{result: domain.CompletionResult{
		Text:        "answer",
		TotalTokens: 40,
	}}
	p := NewInstrumentedCompleter(inner, "test-shared", "model", bt, zap.NewNop())

	if _, err := p.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 60 + 40 = 100, the next request hits the cap.
	if _, err := p.Complete(context.Background(), "prompt"); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected domain.ErrQuotaExceeded after pool exhausted, got %v", err)
	}
}
