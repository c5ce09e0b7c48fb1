package api_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syslvlup/syslvlup/internal/api"
	"github.com/syslvlup/syslvlup/internal/factory"
	"github.com/syslvlup/syslvlup/internal/testutil"
)

func TestServerServesAndShutsDown(t *testing.T) {
	app := factory.NewTestApp()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := api.DefaultServerConfig()
	cfg.ShutdownTimeout = time.Second
	server := api.NewServer(app.Router(), cfg, testutil.NopLogger())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestServerAddr(t *testing.T) {
	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 9999

	server := api.NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger())
	assert.Equal(t, "127.0.0.1:9999", server.Addr())
}
