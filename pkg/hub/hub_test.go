package hub

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCloseStopsRunLoop(t *testing.T) {
	h := New("test")
	go h.Run()
	waitFor(t, h.IsRunning, "hub to start")

	h.Close()
	waitFor(t, func() bool { return !h.IsRunning() }, "hub to stop")

	// Close is idempotent.
	h.Close()

	// Broadcasting into a stopped hub must not block; the buffered
	// channel absorbs messages until full, then they are dropped.
	for i := 0; i < 300; i++ {
		h.Broadcast([]byte("msg"))
	}
}

func TestCloseReleasesClients(t *testing.T) {
	h := New("test")
	go h.Run()
	waitFor(t, h.IsRunning, "hub to start")

	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client to register")

	h.Close()
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "client to be dropped")

	if _, ok := <-c.send; ok {
		t.Error("client send channel should be closed after hub close")
	}
}

func TestRegisterAfterCloseDoesNotBlock(t *testing.T) {
	h := New("test")
	go h.Run()
	waitFor(t, h.IsRunning, "hub to start")
	h.Close()
	waitFor(t, func() bool { return !h.IsRunning() }, "hub to stop")

	done := make(chan struct{})
	go func() {
		c := NewClient(h, nil)
		if _, ok := <-c.send; ok {
			t.Error("send channel should be closed when hub is stopped")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NewClient blocked on a closed hub")
	}
}
