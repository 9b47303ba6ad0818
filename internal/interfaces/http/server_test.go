package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
)

func TestNewServer_AppliesDefaults(t *testing.T) {
	s := NewServer(ServerConfig{Port: 8080}, http.NotFoundHandler(), logging.NewNopLogger())

	assert.Equal(t, 15*time.Second, s.cfg.ReadTimeout)
	assert.Equal(t, 15*time.Second, s.cfg.WriteTimeout)
	assert.Equal(t, 60*time.Second, s.cfg.IdleTimeout)
	assert.Equal(t, 30*time.Second, s.cfg.ShutdownTimeout)
	assert.Equal(t, ":8080", s.srv.Addr)
}

func TestServer_StartStop(t *testing.T) {
	// Port 0 binds an ephemeral port so the test never collides.
	s := NewServer(ServerConfig{Port: 0}, http.NotFoundHandler(), logging.NewNopLogger())

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	// Give ListenAndServe a moment to bind before shutting down.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
