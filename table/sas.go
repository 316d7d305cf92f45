package table

import (
	"time"

	"github.com/contoso-cloud/azstore/internal/sas"
)

// SASOptions configures a Table SAS (spec.md §4.6 "SAS generation (Table)"),
// including the optional partition/row key range that scopes which
// entities the token covers.
type SASOptions struct {
	Version     string
	Start       *time.Time
	Expiry      time.Time
	Permissions sas.TablePermissions
	Identifier  string

	StartPartitionKey string
	StartRowKey       string
	EndPartitionKey   string
	EndRowKey         string
}

// GenerateSAS signs a Table SAS scoped to tableName, returning the
// URL-encoded query string to append to a request URL. It requires the
// client to have been constructed with a shared key, not a SAS.
func (c *Client) GenerateSAS(tableName string, opts SASOptions) (string, error) {
	values := sas.TableSignatureValues{
		Version:           opts.Version,
		Start:             opts.Start,
		Expiry:            opts.Expiry,
		Permissions:       opts.Permissions,
		Identifier:        opts.Identifier,
		StartPartitionKey: opts.StartPartitionKey,
		StartRowKey:       opts.StartRowKey,
		EndPartitionKey:   opts.EndPartitionKey,
		EndRowKey:         opts.EndRowKey,
	}
	if values.Version == "" {
		values.Version = "2014-02-14"
	}
	return values.SignWithSharedKey(c.accountID, tableName, c.accessKey)
}
