package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contoso-cloud/azstore/internal/decode"
	"github.com/contoso-cloud/azstore/queue"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue service operations",
	}
	cmd.AddCommand(
		newQueueListCmd(),
		newQueueCreateCmd(),
		newQueueDeleteCmd(),
		newQueueMetadataCmd(),
		newQueuePutMessageCmd(),
		newQueuePeekCmd(),
		newQueueGetMessagesCmd(),
		newQueueDeleteMessageCmd(),
		newQueueClearCmd(),
	)
	return cmd
}

func newQueueListCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queues in the account",
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			res, err := c.ListQueues(cmd.Context(), queue.ListQueuesOptions{Prefix: prefix})
			if err != nil {
				fatalf("%v", err)
			}
			for _, q := range res.Queues {
				fmt.Println(q.Name)
			}
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list queues with this name prefix")
	return cmd
}

func newQueueCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a queue",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.CreateQueue(cmd.Context(), args[0], nil); err != nil {
				fatalf("%v", err)
			}
		},
	}
	return cmd
}

func newQueueDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a queue",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.DeleteQueue(cmd.Context(), args[0]); err != nil {
				fatalf("%v", err)
			}
		},
	}
}

func newQueueMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <name>",
		Short: "Show a queue's approximate message count and metadata",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			count, metadata, err := c.GetMetadata(cmd.Context(), args[0])
			if err != nil {
				fatalf("%v", err)
			}
			fmt.Printf("approximate messages: %d\n", count)
			for k, v := range metadata {
				fmt.Printf("%s: %s\n", k, v)
			}
		},
	}
}

func newQueuePutMessageCmd() *cobra.Command {
	var visibility time.Duration
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "put <queue> <base64-text>",
		Short: "Enqueue a message",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			opts := queue.PutMessageOptions{VisibilityTimeout: visibility, MessageTTL: ttl}
			if err := c.PutMessage(cmd.Context(), args[0], args[1], opts); err != nil {
				fatalf("%v", err)
			}
		},
	}
	cmd.Flags().DurationVar(&visibility, "visibility-timeout", 0, "initial invisibility duration")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "message time-to-live")
	return cmd
}

func newQueuePeekCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "peek <queue>",
		Short: "Peek at messages without making them invisible",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			msgs, err := c.PeekMessages(cmd.Context(), args[0], n)
			if err != nil {
				fatalf("%v", err)
			}
			printMessages(msgs)
		},
	}
	cmd.Flags().IntVar(&n, "count", 1, "number of messages to peek (max 32)")
	return cmd
}

func newQueueGetMessagesCmd() *cobra.Command {
	var n int
	var visibility time.Duration
	cmd := &cobra.Command{
		Use:   "get <queue>",
		Short: "Dequeue messages, making them invisible for the visibility timeout",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			msgs, err := c.GetMessages(cmd.Context(), args[0], queue.GetMessagesOptions{NumOfMessages: n, VisibilityTimeout: visibility})
			if err != nil {
				fatalf("%v", err)
			}
			printMessages(msgs)
		},
	}
	cmd.Flags().IntVar(&n, "count", 1, "number of messages to dequeue (max 32)")
	cmd.Flags().DurationVar(&visibility, "visibility-timeout", 30*time.Second, "invisibility duration after dequeue")
	return cmd
}

func newQueueDeleteMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-message <queue> <message-id> <pop-receipt>",
		Short: "Delete a previously dequeued message",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.DeleteMessage(cmd.Context(), args[0], args[1], args[2]); err != nil {
				fatalf("%v", err)
			}
		},
	}
}

func newQueueClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <queue>",
		Short: "Delete all messages in a queue",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := queueClient()
			if err != nil {
				fatalf("%v", err)
			}
			if err := c.ClearMessages(cmd.Context(), args[0]); err != nil {
				fatalf("%v", err)
			}
		},
	}
}

func printMessages(msgs []decode.Message) {
	for _, m := range msgs {
		fmt.Printf("%s\tdequeue=%d\t%s\n", m.MessageID, m.DequeueCount, m.MessageText)
	}
}
