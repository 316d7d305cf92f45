package signing

import (
	"sort"
	"strings"
)

// queueSupportedQueryParams is the fixed set of query parameters that
// participate in Queue Shared Key signing (spec.md §4.1).
var queueSupportedQueryParams = map[string]bool{
	"timeout":           true,
	"comp":              true,
	"prefix":            true,
	"marker":            true,
	"maxresults":        true,
	"include":           true,
	"messagettl":        true,
	"visibilitytimeout": true,
	"numofmessages":     true,
	"peekonly":          true,
	"popreceipt":        true,
}

// presortedHeaders is the fast path's pre-sorted list of the three headers
// every request always carries. It is a performance optimization only (see
// Design Notes §9): it must be skipped whenever an x-ms-meta-* header is
// present, since those also sort lexicographically among x-ms-* headers
// and the presorted list doesn't account for them.
var presortedHeaders = []string{"x-ms-client-request-id", "x-ms-date", "x-ms-version"}

// QueueStringToSign builds the Shared Key string-to-sign for the Queue
// service canonicalization (spec.md §4.1).
func QueueStringToSign(method, path string, query map[string]string, headers map[string]string, accountID string) string {
	lines := []string{
		method,
		headers["content-encoding"],
		headers["content-language"],
		headers["content-length"],
		headers["content-md5"],
		headers["content-type"],
		"", // Date is always replaced by x-ms-date, which is carried in the x-ms-* block below
		headers["if-modified-since"],
		headers["if-match"],
		headers["if-none-match"],
		headers["if-unmodified-since"],
		headers["range"],
	}

	for _, h := range sortedXMSHeaders(headers) {
		lines = append(lines, h+":"+headers[h])
	}

	lines = append(lines, canonicalizedResource(accountID, path))

	for _, q := range sortedSupportedQueryParams(query, queueSupportedQueryParams) {
		lines = append(lines, q+":"+query[q])
	}

	return strings.Join(lines, "\n")
}

// sortedXMSHeaders returns the names of every present x-ms-* header in
// lexicographic order, taking the presorted fast path when no
// x-ms-meta-* header is present.
func sortedXMSHeaders(headers map[string]string) []string {
	hasMeta := false
	for name := range headers {
		if strings.HasPrefix(name, "x-ms-meta-") {
			hasMeta = true
			break
		}
	}
	if !hasMeta {
		out := make([]string, 0, len(presortedHeaders))
		for _, h := range presortedHeaders {
			if _, ok := headers[h]; ok {
				out = append(out, h)
			}
		}
		return out
	}

	var names []string
	for name := range headers {
		if strings.HasPrefix(name, "x-ms-") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// sortedSupportedQueryParams returns the names of every query parameter
// present in both query and supported, in lexicographic order.
func sortedSupportedQueryParams(query map[string]string, supported map[string]bool) []string {
	var names []string
	for name := range query {
		if supported[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// canonicalizedResource renders "/<accountId><path>".
func canonicalizedResource(accountID, path string) string {
	return "/" + accountID + path
}
