package cli

import (
	"context"
	"testing"

	"github.com/dkaryakin/inflow/internal/model"
)

func TestCaptureProcessor_EmptyInput(t *testing.T) {
	p, err := newCaptureProcessor(model.DefaultConfig(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.ProcessInput(context.Background(), "   \n\t "); err == nil {
		t.Error("expected error for whitespace-only input")
	}
}

func TestCaptureProcessor_NoProviderNoTokens(t *testing.T) {
	p, err := newCaptureProcessor(model.DefaultConfig(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.ProcessInput(context.Background(), "buy milk")
	if err != nil {
		t.Fatal(err)
	}

	// Without a reasoning backend every capture degrades to a document
	// capture; without tokens the store reports its own disconnection.
	if result.Category != model.CategoryOther {
		t.Errorf("expected other category, got %s", result.Category)
	}
	if result.Title != "buy milk" {
		t.Errorf("expected input as title, got %q", result.Title)
	}
	if result.DocumentError != "document store not connected" {
		t.Errorf("unexpected document error: %q", result.DocumentError)
	}
	if result.DocumentsStatus.Connected || result.CalendarStatus.Connected {
		t.Error("expected both backends disconnected without tokens")
	}
}

func TestCaptureProcessor_UnknownProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Reason.Provider = "mainframe"

	if _, err := newCaptureProcessor(cfg, "", nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
