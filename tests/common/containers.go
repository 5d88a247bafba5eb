package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TriageAPIEnv provides a running issue triage API for integration tests.
// The container image is named by TRIAGE_API_IMAGE; when TRIAGE_TEST_URL is
// set instead, the environment wraps that URL and manages no container.
type TriageAPIEnv struct {
	t          *testing.T
	api        testcontainers.Container
	ctx        context.Context
	cancel     context.CancelFunc
	url        string
	resultsDir string
}

// NewTriageAPIEnv starts the triage API container for one test.
// Skips the test when TRIAGE_API_IMAGE is unset or -short is given.
func NewTriageAPIEnv(t *testing.T) *TriageAPIEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// Manual mode -- tests run against an already-running API.
	if url := os.Getenv("TRIAGE_TEST_URL"); url != "" {
		return &TriageAPIEnv{t: t, url: url}
	}

	image := os.Getenv("TRIAGE_API_IMAGE")
	if image == "" {
		t.Skip("TRIAGE_API_IMAGE not set; skipping upstream integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	// Create results directory for container logs
	datetime := time.Now().Format("20060102-150405")
	resultsDir := filepath.Join(FindProjectRoot(), "tests", "logs", datetime+"-"+t.Name())
	os.MkdirAll(resultsDir, 0755)

	// The API reads its vector store credentials from the environment;
	// pass them through when the host has them configured.
	apiEnv := map[string]string{}
	for _, key := range []string{"WEAVIATE_URL", "WEAVIATE_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			apiEnv[key] = v
		}
	}

	apiContainer, err := testcontainers.Run(ctx, image,
		testcontainers.WithExposedPorts("8000/tcp"),
		testcontainers.WithEnv(apiEnv),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/").WithPort("8000/tcp").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		cancel()
		t.Fatalf("failed to start triage API container: %v", err)
	}

	mappedPort, err := apiContainer.MappedPort(ctx, "8000/tcp")
	if err != nil {
		apiContainer.Terminate(ctx)
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	host, err := apiContainer.Host(ctx)
	if err != nil {
		apiContainer.Terminate(ctx)
		cancel()
		t.Fatalf("failed to get host: %v", err)
	}

	url := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	t.Logf("Triage API ready: %s", url)

	return &TriageAPIEnv{
		t:          t,
		api:        apiContainer,
		ctx:        ctx,
		cancel:     cancel,
		url:        url,
		resultsDir: resultsDir,
	}
}

// URL returns the base URL of the running triage API.
func (e *TriageAPIEnv) URL() string {
	return e.url
}

// Cleanup tears down the container.
// Uses a fresh context for teardown in case the main context expired.
func (e *TriageAPIEnv) Cleanup() {
	if e == nil {
		return
	}

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cleanupCancel()

	// Collect logs before teardown
	e.collectLogs(cleanupCtx)

	if e.api != nil {
		e.api.Terminate(cleanupCtx)
	}
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *TriageAPIEnv) collectLogs(ctx context.Context) {
	if e.api == nil {
		return
	}
	reader, err := e.api.Logs(ctx)
	if err != nil {
		return
	}
	defer reader.Close()
	logs, _ := io.ReadAll(reader)
	os.WriteFile(filepath.Join(e.resultsDir, "triage-api.log"), logs, 0644)
}

// FindProjectRoot walks up from the working directory to the module root.
func FindProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
