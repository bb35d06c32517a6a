package app

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []string
	docs     []string
}

func (f *fakeSender) Send(ctx context.Context, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeSender) SendDocumentPath(ctx context.Context, filepath string, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, filepath)
	return nil
}

func TestNotifierSendsSummary(t *testing.T) {
	sender := &fakeSender{}
	notifier := &NotifierService{Sender: sender, ThresholdDays: 30}

	snap := Snapshot{Total: 3, Processed: 3, Newly: 2, Errors: 1}
	if err := notifier.Notify(context.Background(), snap, []string{"a.example", "b.example"}); err != nil {
		t.Fatalf("notify returned error: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	for _, want := range []string{"30 天", "3/3", "- a.example", "- b.example"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestNotifierRequiresSender(t *testing.T) {
	notifier := &NotifierService{}
	if err := notifier.Notify(context.Background(), Snapshot{}, nil); err != ErrMissingDependencies {
		t.Fatalf("expected ErrMissingDependencies, got %v", err)
	}
}

func TestAppNotifiesAfterRun(t *testing.T) {
	lookup := newFakeLookup()
	lookup.dates["a.example"] = []time.Time{daysAgo(3)}
	sender := &fakeSender{}

	application := &App{
		Checker:    newChecker(lookup, nil, 30),
		Out:        &bytes.Buffer{},
		Notifier:   &NotifierService{Sender: sender, ThresholdDays: 30},
		OutputPath: "out.txt",
	}
	if _, err := application.Run(context.Background(), []string{"a.example"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(sender.messages) != 1 || !strings.Contains(sender.messages[0], "a.example") {
		t.Fatalf("unexpected messages %q", sender.messages)
	}
	if len(sender.docs) != 1 || sender.docs[0] != "out.txt" {
		t.Fatalf("expected output file upload, got %q", sender.docs)
	}
}
