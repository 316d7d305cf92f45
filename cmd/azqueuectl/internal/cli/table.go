package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contoso-cloud/azstore/internal/decode"
	"github.com/contoso-cloud/azstore/table"
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Table service operations",
	}
	cmd.AddCommand(
		newTableListCmd(),
		newTableCreateCmd(),
		newTableDeleteCmd(),
		newTableGetEntityCmd(),
		newTableQueryCmd(),
		newTableInsertCmd(),
		newTableUpdateCmd(),
		newTableDeleteEntityCmd(),
	)
	return cmd
}

func newTableListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tables in the account",
		Run: func(cmd *cobra.Command, args []string) {
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			items, _, err := c.QueryTables(cmd.Context())
			if err != nil {
				fatalf("%v", err)
			}
			for _, item := range items {
				fmt.Println(item.TableName)
			}
		},
	}
}

func newTableCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a table",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.CreateTable(cmd.Context(), args[0]); err != nil {
				fatalf("%v", err)
			}
		},
	}
}

func newTableDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a table",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.DeleteTable(cmd.Context(), args[0]); err != nil {
				fatalf("%v", err)
			}
		},
	}
}

func newTableGetEntityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-entity <table> <partition-key> <row-key>",
		Short: "Fetch a single entity",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			entity, err := c.GetEntity(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				fatalf("%v", err)
			}
			printEntity(entity)
		},
	}
}

func newTableQueryCmd() *cobra.Command {
	var filter string
	var top int
	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "List entities, optionally filtered",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			entities, _, err := c.QueryEntities(cmd.Context(), args[0], table.QueryEntitiesOptions{Filter: filter, Top: top})
			if err != nil {
				fatalf("%v", err)
			}
			for _, e := range entities {
				printEntity(e)
			}
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "raw OData $filter expression")
	cmd.Flags().IntVar(&top, "top", 0, "maximum entities to return (capped at 1000)")
	return cmd
}

func newTableInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <json-entity>",
		Short: "Insert a new entity (JSON object with PartitionKey/RowKey)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			entity, err := parseEntity(args[1])
			if err != nil {
				fatalf("%v", err)
			}
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.InsertEntity(cmd.Context(), args[0], entity); err != nil {
				fatalf("%v", err)
			}
		},
	}
}

func newTableUpdateCmd() *cobra.Command {
	var merge bool
	var eTag string
	cmd := &cobra.Command{
		Use:   "update <table> <partition-key> <row-key> <json-entity>",
		Short: "Replace or merge an entity",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			entity, err := parseEntity(args[3])
			if err != nil {
				fatalf("%v", err)
			}
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			mode := table.Replace
			if merge {
				mode = table.Merge
			}
			err = c.UpdateEntity(cmd.Context(), args[0], args[1], args[2], entity, table.UpdateEntityOptions{Mode: mode, ETag: eTag})
			if err != nil {
				fatalf("%v", err)
			}
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "merge instead of replacing the entity")
	cmd.Flags().StringVar(&eTag, "etag", "", `"*" to require the entity exist, a specific ETag to require a match, or empty for insert-or-replace/insert-or-merge`)
	return cmd
}

func newTableDeleteEntityCmd() *cobra.Command {
	var eTag string
	cmd := &cobra.Command{
		Use:   "delete-entity <table> <partition-key> <row-key>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := tableClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.DeleteEntity(cmd.Context(), args[0], args[1], args[2], eTag); err != nil {
				fatalf("%v", err)
			}
		},
	}
	cmd.Flags().StringVar(&eTag, "etag", "*", "ETag to require a match against (required by the service)")
	return cmd
}

func parseEntity(raw string) (decode.Entity, error) {
	var entity decode.Entity
	if err := json.Unmarshal([]byte(raw), &entity); err != nil {
		return nil, fmt.Errorf("parsing entity JSON: %w", err)
	}
	return entity, nil
}

func printEntity(entity decode.Entity) {
	enc := json.NewEncoder(os.Stdout)
	enc.Encode(entity)
}
