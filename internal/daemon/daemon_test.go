package daemon_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"chatshot/internal/classifier"
	"chatshot/internal/config"
	"chatshot/internal/daemon"
	"chatshot/internal/label"
	"chatshot/internal/logging"
	"chatshot/internal/testsupport"
)

type staticPipeline struct{}

func (staticPipeline) Classify(context.Context, []byte) (classifier.Result, error) {
	return classifier.Result{Label: label.Chat, Classified: true}, nil
}

func (staticPipeline) Mode() string { return config.ModeOCR }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testConfig(t)
	d, err := daemon.New(cfg, staticPipeline{}, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(d.Stop)
	if !d.Running() || d.Addr() == "" {
		t.Fatalf("expected running daemon with address, got running=%v addr=%q", d.Running(), d.Addr())
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+d.Addr()+"/api/classify", "image/png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("classify request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"label":"CHAT"`) {
		t.Fatalf("unexpected response %d: %s", resp.StatusCode, body)
	}

	d.Stop()
	if d.Running() {
		t.Fatal("expected daemon to stop")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testConfig(t)
	first, err := daemon.New(cfg, staticPipeline{}, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := daemon.New(cfg, staticPipeline{}, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	err = second.Start(ctx)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestDaemonRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	d, err := daemon.New(cfg, staticPipeline{}, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for !d.Running() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if d.Running() {
		t.Fatal("expected daemon to stop after cancel")
	}
}

func TestNewRequiresPipeline(t *testing.T) {
	if _, err := daemon.New(testConfig(t), nil, nil); err == nil {
		t.Fatal("expected error without classifier")
	}
}
