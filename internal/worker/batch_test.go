package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dkaryakin/inflow/internal/model"
)

type mockProcessor struct {
	mu     sync.Mutex
	seen   []string
	failOn string
}

func (m *mockProcessor) ProcessInput(_ context.Context, input string) (*model.CaptureResult, error) {
	m.mu.Lock()
	m.seen = append(m.seen, input)
	m.mu.Unlock()

	if input == m.failOn {
		return nil, errors.New("processing failed")
	}
	return &model.CaptureResult{Title: input, Status: "success"}, nil
}

func TestBatchProcessor_ProcessInputs(t *testing.T) {
	proc := &mockProcessor{}
	b := NewBatchProcessor(proc, 3, 0, 0)

	inputs := []string{"buy milk", "watch inception", "dentist tuesday 3pm"}
	outcomes := b.ProcessInputs(context.Background(), inputs)

	if len(outcomes) != len(inputs) {
		t.Fatalf("expected %d outcomes, got %d", len(inputs), len(outcomes))
	}

	byInput := make(map[string]*CaptureOutcome)
	for _, o := range outcomes {
		byInput[o.Input] = o
	}
	for _, input := range inputs {
		o, ok := byInput[input]
		if !ok {
			t.Fatalf("no outcome for %q", input)
		}
		if o.Err() != nil {
			t.Errorf("unexpected error for %q: %v", input, o.Err())
		}
		if o.Result == nil || o.Result.Title != input {
			t.Errorf("unexpected result for %q: %+v", input, o.Result)
		}
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	b := NewBatchProcessor(&mockProcessor{}, 2, 0, 0)
	if outcomes := b.ProcessInputs(context.Background(), nil); len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}

func TestBatchProcessor_FailureIsolated(t *testing.T) {
	proc := &mockProcessor{failOn: "bad one"}
	b := NewBatchProcessor(proc, 2, 0, 0)

	outcomes := b.ProcessInputs(context.Background(), []string{"good", "bad one", "also good"})

	failed := 0
	for _, o := range outcomes {
		if o.Err() != nil {
			failed++
			if o.Input != "bad one" {
				t.Errorf("wrong input failed: %q", o.Input)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestReadInputsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captures.txt")
	content := "buy milk\n\n# a comment\nwatch inception\nbuy milk\n  padded  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := ReadInputsFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"buy milk", "watch inception", "buy milk", "padded"}
	if len(inputs) != len(want) {
		t.Fatalf("expected %d inputs, got %d: %v", len(want), len(inputs), inputs)
	}
	for i, w := range want {
		if inputs[i] != w {
			t.Errorf("input %d: expected %q, got %q", i, w, inputs[i])
		}
	}
}

func TestReadInputsFromFile_Missing(t *testing.T) {
	if _, err := ReadInputsFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captures.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBatchProcessor(&mockProcessor{}, 2, 0, 0)
	outcomes, err := b.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 2 {
		t.Errorf("expected 2 outcomes, got %d", len(outcomes))
	}
}
