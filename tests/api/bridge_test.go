package api

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/triage-mcp/internal/common"
	"github.com/bobmcallan/triage-mcp/internal/mcp"
	testcommon "github.com/bobmcallan/triage-mcp/tests/common"
)

// newBridge wires the built-in catalog against a live API URL.
func newBridge(t *testing.T, baseURL string) *mcp.Bridge {
	t.Helper()
	catalog, err := mcp.NewCatalog(mcp.DefaultCatalog())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return mcp.NewBridge(catalog, baseURL, "integration-test-token", 30*time.Second, common.NewSilentLogger())
}

// assertAnswered fails the test unless the invocation produced an HTTP answer
// from the API. An upstream error still proves the wire path; a transport
// failure means the request never completed.
func assertAnswered(t *testing.T, result mcp.Result) {
	t.Helper()
	if result.Ok {
		return
	}
	if result.Kind == mcp.ErrKindUpstream {
		t.Logf("upstream answered with an error (vector store not configured?): %s", result.Message)
		return
	}
	t.Fatalf("expected an HTTP answer from the API, got %s: %s", result.Kind, result.Message)
}

func TestHealthCheck(t *testing.T) {
	env := testcommon.NewTriageAPIEnv(t)
	defer env.Cleanup()

	bridge := newBridge(t, env.URL())

	result := bridge.Invoke(t.Context(), "api_health_check", map[string]interface{}{})
	if !result.Ok {
		t.Fatalf("health check failed: %s: %s", result.Kind, result.Message)
	}
	if !strings.Contains(result.Content, "Issue Triage Assistant API is running") {
		t.Errorf("unexpected health response: %s", result.Content)
	}
}

func TestSearchIssuesByLabel(t *testing.T) {
	env := testcommon.NewTriageAPIEnv(t)
	defer env.Cleanup()

	bridge := newBridge(t, env.URL())

	result := bridge.Invoke(t.Context(), "search_issues_by_label", map[string]interface{}{
		"label": "bug",
		"limit": float64(3),
	})
	assertAnswered(t, result)

	// With a configured vector store the search must succeed outright.
	if os.Getenv("WEAVIATE_URL") != "" && !result.Ok {
		t.Errorf("search failed against configured store: %s: %s", result.Kind, result.Message)
	}
}

func TestFindSimilarIssues(t *testing.T) {
	env := testcommon.NewTriageAPIEnv(t)
	defer env.Cleanup()

	bridge := newBridge(t, env.URL())

	result := bridge.Invoke(t.Context(), "find_similar_issues", map[string]interface{}{
		"issue_text": "login page returns 500 after password reset",
		"limit":      float64(3),
	})
	assertAnswered(t, result)

	if os.Getenv("WEAVIATE_URL") != "" && !result.Ok {
		t.Errorf("similarity search failed against configured store: %s: %s", result.Kind, result.Message)
	}
}
