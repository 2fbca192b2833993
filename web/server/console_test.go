package server

import (
	"fmt"
	"testing"
	"time"
)

func TestConsoleBuffer_BasicCapture(t *testing.T) {
	buf := NewConsoleBuffer(10)

	testMessage := "tracing rate: 1.234e+06 rays/s"
	n, err := buf.Write([]byte(testMessage + "\n"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(testMessage)+1 {
		t.Errorf("Expected %d bytes written, got %d", len(testMessage)+1, n)
	}

	messages := buf.Messages()
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Message != testMessage {
		t.Errorf("Expected message '%s', got '%s'", testMessage, messages[0].Message)
	}
	if time.Since(messages[0].Timestamp) > time.Second {
		t.Errorf("Timestamp seems too old: %v", messages[0].Timestamp)
	}
}

func TestConsoleBuffer_MultipleLines(t *testing.T) {
	buf := NewConsoleBuffer(10)

	buf.Write([]byte("line 1\nline 2\nline 3\n"))

	messages := buf.Messages()
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	for i, expected := range []string{"line 1", "line 2", "line 3"} {
		if messages[i].Message != expected {
			t.Errorf("Message %d: expected '%s', got '%s'", i, expected, messages[i].Message)
		}
	}
}

func TestConsoleBuffer_WrapsOldestFirst(t *testing.T) {
	buf := NewConsoleBuffer(3)

	for i := 1; i <= 5; i++ {
		buf.Write([]byte(fmt.Sprintf("message %d\n", i)))
	}

	messages := buf.Messages()
	if len(messages) != 3 {
		t.Fatalf("Expected 3 retained messages, got %d", len(messages))
	}

	// Oldest two should have been evicted
	for i, expected := range []string{"message 3", "message 4", "message 5"} {
		if messages[i].Message != expected {
			t.Errorf("Message %d: expected '%s', got '%s'", i, expected, messages[i].Message)
		}
	}
}

func TestConsoleBuffer_IgnoresEmptyLines(t *testing.T) {
	buf := NewConsoleBuffer(10)

	buf.Write([]byte("\n\nreal line\n\n"))

	if buf.Len() != 1 {
		t.Errorf("Expected 1 message, got %d", buf.Len())
	}
}

func TestConsoleBuffer_ConcurrentWrites(t *testing.T) {
	buf := NewConsoleBuffer(100)

	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 25; i++ {
				buf.Write([]byte(fmt.Sprintf("writer %d line %d\n", id, i)))
			}
		}(w)
	}
	for w := 0; w < 4; w++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Timeout waiting for writers")
		}
	}

	if buf.Len() != 100 {
		t.Errorf("Expected 100 retained messages, got %d", buf.Len())
	}
}
