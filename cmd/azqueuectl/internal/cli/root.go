// Package cli implements azqueuectl's command tree: a small example CLI
// exercising the queue and table façades.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/contoso-cloud/azstore"
	"github.com/contoso-cloud/azstore/internal/logging"
	"github.com/contoso-cloud/azstore/queue"
	"github.com/contoso-cloud/azstore/table"
)

var (
	accountID string
	accessKey string
	sasToken  string
	host      string
	verbose   bool

	logger *logging.Logger
)

// NewRootCmd builds the azqueuectl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "azqueuectl",
		Short: "Inspect and drive Azure Queue/Table storage accounts",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.New(os.Stderr)
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&accountID, "account", os.Getenv("AZSTORE_ACCOUNT"), "storage account name")
	root.PersistentFlags().StringVar(&accessKey, "key", os.Getenv("AZSTORE_KEY"), "storage account key (base64)")
	root.PersistentFlags().StringVar(&sasToken, "sas", os.Getenv("AZSTORE_SAS"), "shared access signature query string")
	root.PersistentFlags().StringVar(&host, "host", "", "override service host, e.g. to target an emulator")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newQueueCmd())
	root.AddCommand(newTableCmd())
	return root
}

// Execute runs azqueuectl, cancelling in-flight operations on SIGINT/SIGTERM.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-sig; ok {
			cancel()
		}
	}()
	defer signal.Stop(sig)

	root := NewRootCmd()
	root.SetContext(ctx)
	return root.Execute()
}

func baseConfig() azstore.Config {
	return azstore.Config{
		AccountID: accountID,
		AccessKey: accessKey,
		SAS:       sasToken,
		Logger:    logger,
	}
}

func queueClient() (*queue.Client, error) {
	return queue.NewClient(baseConfig(), host)
}

func tableClient() (*table.Client, error) {
	return table.NewClient(baseConfig(), host)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "azqueuectl: "+format+"\n", args...)
	os.Exit(1)
}
