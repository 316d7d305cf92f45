package table

import (
	"net/url"
	"strings"
)

// entityPath builds "/<table>(PartitionKey='<pk>',RowKey='<rk>')" per
// spec.md §4.6: single quotes inside the keys are doubled, then the key
// values are percent-encoded so the path stays well-formed even when a key
// contains reserved characters.
func entityPath(tableName, partitionKey, rowKey string) string {
	pk := url.PathEscape(doubleQuotes(partitionKey))
	rk := url.PathEscape(doubleQuotes(rowKey))
	return "/" + tableName + "(PartitionKey='" + pk + "',RowKey='" + rk + "')"
}

func doubleQuotes(key string) string {
	return strings.ReplaceAll(key, "'", "''")
}
