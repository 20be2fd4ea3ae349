package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/janpfeifer/GoMemory/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Game: config.GameConfig{
			RevealDelay:  time.Second,
			TickInterval: time.Second,
		},
	}
}

func httpGet(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Failed to connect to server: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET %s: expected status OK, got %v", url, resp.Status)
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return string(bodyBytes)
}

func TestServerRun(t *testing.T) {
	// Use a background context that we can cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the server in a goroutine
	started := make(chan *ServerState, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, testConfig(), started)
	}()
	var serverState *ServerState
	select {
	case serverState = <-started:
	case err := <-errCh:
		t.Fatalf("Server failed to start: %v", err)
	}
	baseURL := "http://" + serverState.Address

	// The go-app framework generates standard HTML, with the app name in it.
	for _, path := range []string{"/", "/game"} {
		if body := httpGet(t, baseURL+path); !strings.Contains(body, "GoMemory") {
			t.Errorf("Expected %s to contain 'GoMemory', got body: %s", path, body)
		}
	}
	if body := httpGet(t, baseURL+"/healthz"); body != "ok" {
		t.Errorf("Unexpected /healthz body %q", body)
	}
	if body := httpGet(t, baseURL+"/metrics"); !strings.Contains(body, "gomemory_tables") {
		t.Errorf("Expected gomemory_tables in /metrics, got: %s", body)
	}
	if body := httpGet(t, baseURL+"/debug/tables"); strings.TrimSpace(body) != "[]" {
		t.Errorf("Expected no tables, got %s", body)
	}

	// Cancel the context to stop the server
	cancel()

	// Wait for the server to shutdown cleanly
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Server shut down with error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Errorf("Server took too long to shut down")
	}
}

func TestServerRunInvalidCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Game.Catalog = []config.CardConfig{
		{ID: 1, Name: "Bidu", Image: "bidu.png"},
		{ID: 1, Name: "Mingau", Image: "mingau.png"},
	}
	if err := Run(context.Background(), cfg, nil); err == nil {
		t.Errorf("Expected an error for a catalog with duplicate cards")
	}
}
