package signing

import "strings"

// TableStringToSign builds the Shared Key string-to-sign for the Table
// service canonicalization (spec.md §4.1): a shorter form than the Queue
// one, and with only "comp" ever participating from the query string.
func TableStringToSign(method, path string, query map[string]string, headers map[string]string, accountID string) string {
	resource := canonicalizedResource(accountID, path)
	if comp, ok := query["comp"]; ok {
		resource += "?comp=" + comp
	}

	return strings.Join([]string{
		method,
		headers["content-md5"],
		headers["content-type"],
		headers["x-ms-date"],
		resource,
	}, "\n")
}
