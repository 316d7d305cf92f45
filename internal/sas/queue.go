// Package sas generates Shared Access Signature query strings for the Queue
// and Table services, and drives the refresh lifecycle for clients whose
// sas option is a producer rather than a static string.
package sas

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// isoNoMillis is the ISO-8601 form used for SAS st/se timestamps: no
// fractional seconds, UTC, trailing "Z".
const isoNoMillis = "2006-01-02T15:04:05Z"

// QueuePermissions is the r/a/u/p permission set for a Queue SAS.
type QueuePermissions struct {
	Read    bool
	Add     bool
	Update  bool
	Process bool
}

// String renders the permission flags in the fixed r/a/u/p order, with
// absent permissions simply omitted.
func (p QueuePermissions) String() string {
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
	if p.Process {
		b.WriteByte('p')
	}
	return b.String()
}

// QueueSignatureValues holds the fields of a Queue SAS before signing.
type QueueSignatureValues struct {
	Version     string
	Start       *time.Time
	Expiry      time.Time
	Permissions QueuePermissions
	Identifier  string
}

// SignWithSharedKey computes the SAS query string per spec.md §4.6. The
// string-to-sign is sp\nst\nse\n/<accountId>/<queue>\nsi\nsv, all lowercase
// on the canonicalized name. Note the si parameter carries the access
// policy identifier here, not se reassigned to it.
func (v QueueSignatureValues) SignWithSharedKey(accountID, queueName, accessKey string) (string, error) {
	canonicalName := fmt.Sprintf("/%s/%s", strings.ToLower(accountID), strings.ToLower(queueName))

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
	}, "\n")

	sig, err := signSAS(accessKey, stringToSign)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("sv", v.Version)
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
	q.Set("sig", sig)
	return q.Encode(), nil
}

func signSAS(accessKeyBase64, stringToSign string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(accessKeyBase64)
	if err != nil {
		return "", fmt.Errorf("sas: invalid base64 account key: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
