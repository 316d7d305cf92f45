// Package signing implements Azure Storage's Shared Key request
// canonicalization and HMAC-SHA256 signing for the Queue and Table
// services. See https://docs.microsoft.com/rest/api/storageservices/authorize-requests-to-azure-storage
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// SignString computes base64(HMAC-SHA256(key, stringToSign)) where key is
// the base64-decoded shared account key. It is the one cryptographic
// primitive the whole authorizer reduces to.
func SignString(accountKeyBase64, stringToSign string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(accountKeyBase64)
	if err != nil {
		return "", fmt.Errorf("signing: invalid base64 account key: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// AuthorizationHeader formats the SharedKey authorization header value.
func AuthorizationHeader(accountID, signature string) string {
	return fmt.Sprintf("SharedKey %s:%s", accountID, signature)
}
