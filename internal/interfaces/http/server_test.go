package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dockrmsd/internal/interfaces/http/handlers"
	"github.com/turtacn/dockrmsd/internal/testutil"
)

func TestServer_ServeAndStop(t *testing.T) {
	log := testutil.NewMockLogger()
	router := NewRouter(RouterConfig{HealthHandler: handlers.NewHealthHandler("test")})
	srv := NewServer(ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second}, router, log)
	assert.Same(t, router, srv.Handler())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"version":"test"`)

	require.NoError(t, srv.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err, "a clean stop is not an error")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
	assert.True(t, log.HasMessage("info", "HTTP server listening"))
	assert.True(t, log.HasMessage("info", "HTTP server stopped"))
}

func TestServer_StartBadAddr(t *testing.T) {
	srv := NewServer(ServerConfig{Addr: "256.0.0.1:bad"}, http.NewServeMux(), nil)
	assert.Error(t, srv.Start())
}

//Personal.AI order the ending
