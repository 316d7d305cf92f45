package sas

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TablePermissions is the r/a/u/d permission set for a Table SAS.
type TablePermissions struct {
	Read   bool
	Add    bool
	Update bool
	Delete bool
}

// String renders the permission flags in the fixed r/a/u/d order.
func (p TablePermissions) String() string {
	var b strings.Builder
	if p.Read {
		b.WriteByte('r')
	}
	if p.Add {
		b.WriteByte('a')
	}
	if p.Update {
		b.WriteByte('u')
	}
	if p.Delete {
		b.WriteByte('d')
	}
	return b.String()
}

// TableSignatureValues holds the fields of a Table SAS before signing,
// including the partition/row key range that scopes which entities the
// token covers.
type TableSignatureValues struct {
	Version          string
	Start            *time.Time
	Expiry           time.Time
	Permissions      TablePermissions
	Identifier       string
	StartPartitionKey string
	StartRowKey       string
	EndPartitionKey   string
	EndRowKey         string
}

// SignWithSharedKey computes the SAS query string per spec.md §4.6. The
// Table string-to-sign extends the Queue form with the four key-range
// fields after sv.
func (v TableSignatureValues) SignWithSharedKey(accountID, tableName, accessKey string) (string, error) {
	canonicalName := fmt.Sprintf("/%s/%s", strings.ToLower(accountID), strings.ToLower(tableName))

	start := ""
	if v.Start != nil {
		start = v.Start.UTC().Format(isoNoMillis)
	}
	expiry := v.Expiry.UTC().Format(isoNoMillis)

	stringToSign := strings.Join([]string{
		v.Permissions.String(),
		start,
		expiry,
		canonicalName,
		v.Identifier,
		v.Version,
		v.StartPartitionKey,
		v.StartRowKey,
		v.EndPartitionKey,
		v.EndRowKey,
	}, "\n")

	sig, err := signSAS(accessKey, stringToSign)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("sv", v.Version)
	q.Set("tn", tableName)
	if v.Start != nil {
		q.Set("st", start)
	}
	q.Set("se", expiry)
	if perms := v.Permissions.String(); perms != "" {
		q.Set("sp", perms)
	}
	if v.Identifier != "" {
		q.Set("si", v.Identifier)
	}
	if v.StartPartitionKey != "" {
		q.Set("spk", v.StartPartitionKey)
	}
	if v.StartRowKey != "" {
		q.Set("srk", v.StartRowKey)
	}
	if v.EndPartitionKey != "" {
		q.Set("epk", v.EndPartitionKey)
	}
	if v.EndRowKey != "" {
		q.Set("erk", v.EndRowKey)
	}
	q.Set("sig", sig)
	return q.Encode(), nil
}
