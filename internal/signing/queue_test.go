package signing

import (
	"strings"
	"testing"
)

// TestQueueStringToSignKnownScenario mirrors spec.md §8's concrete scenario 1:
// GET "/" with query {comp: "list"}, a fixed x-ms-date, and the three
// always-present x-ms-* headers.
func TestQueueStringToSignKnownScenario(t *testing.T) {
	headers := map[string]string{
		"x-ms-date":             "Mon, 01 Jan 2024 00:00:00 GMT",
		"x-ms-version":          "2014-02-14",
		"x-ms-client-request-id": "fast-azure-storage",
	}
	query := map[string]string{"comp": "list"}

	got := QueueStringToSign("GET", "/", query, headers, "jungle")

	want := strings.Join([]string{
		"GET",
		"", "", "", "", "", // content-encoding .. content-type
		"", // Date
		"", "", "", "", "", // conditional headers
		"x-ms-client-request-id:fast-azure-storage",
		"x-ms-date:Mon, 01 Jan 2024 00:00:00 GMT",
		"x-ms-version:2014-02-14",
		"/jungle/",
		"comp:list",
	}, "\n")

	if got != want {
		t.Errorf("string-to-sign mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestQueueStringToSignIgnoresUnsupportedQueryParams(t *testing.T) {
	headers := map[string]string{"x-ms-date": "d", "x-ms-version": "v"}
	query := map[string]string{"comp": "metadata", "unsupported": "nope"}

	got := QueueStringToSign("GET", "/q", query, headers, "acct")
	if strings.Contains(got, "unsupported") {
		t.Errorf("expected unsupported query param to be excluded, got %q", got)
	}
	if !strings.Contains(got, "comp:metadata") {
		t.Errorf("expected comp:metadata in string-to-sign, got %q", got)
	}
}

func TestSortedXMSHeadersFastPathVsGeneralPath(t *testing.T) {
	fast := map[string]string{
		"x-ms-date":              "d",
		"x-ms-version":           "v",
		"x-ms-client-request-id": "c",
	}
	got := sortedXMSHeaders(fast)
	want := []string{"x-ms-client-request-id", "x-ms-date", "x-ms-version"}
	if !equalStrings(got, want) {
		t.Errorf("fast path = %v, want %v", got, want)
	}

	withMeta := map[string]string{
		"x-ms-date":       "d",
		"x-ms-version":    "v",
		"x-ms-meta-color": "blue",
	}
	got = sortedXMSHeaders(withMeta)
	want = []string{"x-ms-date", "x-ms-meta-color", "x-ms-version"}
	if !equalStrings(got, want) {
		t.Errorf("general path = %v, want %v", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
