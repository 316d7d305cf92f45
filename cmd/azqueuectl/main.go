// Command azqueuectl is a small example CLI driving the queue and table
// façades: list/create/delete queues and tables, enqueue/dequeue messages,
// and read/write entities.
package main

import (
	"fmt"
	"os"

	"github.com/contoso-cloud/azstore/cmd/azqueuectl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
