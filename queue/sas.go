package queue

import (
	"time"

	"github.com/contoso-cloud/azstore/internal/sas"
)

// SASOptions configures a Queue SAS (spec.md §4.6 "SAS generation (Queue)").
type SASOptions struct {
	Version     string
	Start       *time.Time
	Expiry      time.Time
	Permissions sas.QueuePermissions
	Identifier  string
}

// GenerateSAS signs a Queue SAS scoped to queueName, returning the
// URL-encoded query string to append to a request URL. It requires the
// client to have been constructed with a shared key, not a SAS.
func (c *Client) GenerateSAS(queueName string, opts SASOptions) (string, error) {
	values := sas.QueueSignatureValues{
		Version:     opts.Version,
		Start:       opts.Start,
		Expiry:      opts.Expiry,
		Permissions: opts.Permissions,
		Identifier:  opts.Identifier,
	}
	if values.Version == "" {
		values.Version = "2014-02-14"
	}
	return values.SignWithSharedKey(c.accountID, queueName, c.accessKey)
}
