package commands

import (
	"fmt"
	"strconv"
	"time"

	"ttvdrops/internal/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var webhookName string

func init() {
	webhookAddCmd.Flags().StringVar(&webhookName, "name", "", "A label for the webhook.")
	webhookCmd.AddCommand(webhookAddCmd, webhookListCmd, webhookRemoveCmd)
	subscribeCmd.AddCommand(subscribeGameCmd, subscribeOwnerCmd)
	rootCmd.AddCommand(webhookCmd, subscribeCmd)
}

func parseWebhookID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("webhook id %q: %w", arg, err)
	}
	return id, nil
}

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manages the webhooks notified about new drop campaigns.",
}

var webhookAddCmd = &cobra.Command{
	Use:   "add <discord|email> <url or address>",
	Short: "Registers a webhook and prints its id.",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		kind := args[0]
		if kind != db.WEBHOOK_DISCORD && kind != db.WEBHOOK_EMAIL {
			return fmt.Errorf("unknown webhook kind %q", kind)
		}
		id, err := a.qry.CreateWebhook(cmd.Context(), db.CreateWebhookParams{
			Kind:      kind,
			Target:    args[1],
			Name:      webhookName,
			CreatedAt: a.time.Now(),
		})
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	}),
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the registered webhooks.",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		webhooks, err := a.qry.ListWebhooks(cmd.Context())
		if err != nil {
			return err
		}
		t := newTable()
		t.AppendHeader(table.Row{"ID", "Kind", "Name", "Target", "Created"})
		for _, hook := range webhooks {
			t.AppendRow(table.Row{hook.ID, hook.Kind, hook.Name, hook.Target, hook.CreatedAt.Local().Format(time.DateTime)})
		}
		t.Render()
		return nil
	}),
}

var webhookRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Removes a webhook along with its subscriptions.",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		id, err := parseWebhookID(args[0])
		if err != nil {
			return err
		}

		return db.InTx(cmd.Context(), db.NewMakeTx(a.db), func(tx *db.Queries) error {
			err := tx.DeleteGameSubscriptionsByWebhook(cmd.Context(), id)
			if err != nil {
				return err
			}
			err = tx.DeleteOwnerSubscriptionsByWebhook(cmd.Context(), id)
			if err != nil {
				return err
			}
			removed, err := tx.DeleteWebhook(cmd.Context(), id)
			if err != nil {
				return err
			}
			if removed == 0 {
				return fmt.Errorf("no webhook with id %d", id)
			}
			return nil
		})
	}),
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribes a webhook to the drop campaigns of a game or an organization.",
}

var subscribeGameCmd = &cobra.Command{
	Use:   "game <webhook id> <game twitch id>",
	Short: "Notifies the webhook about new campaigns for a game.",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		id, err := parseWebhookID(args[0])
		if err != nil {
			return err
		}
		return a.qry.CreateGameSubscription(cmd.Context(), db.CreateGameSubscriptionParams{
			WebhookID: id,
			GameID:    args[1],
		})
	}),
}

var subscribeOwnerCmd = &cobra.Command{
	Use:   "owner <webhook id> <organization twitch id>",
	Short: "Notifies the webhook about new campaigns from an organization.",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		id, err := parseWebhookID(args[0])
		if err != nil {
			return err
		}
		return a.qry.CreateOwnerSubscription(cmd.Context(), db.CreateOwnerSubscriptionParams{
			WebhookID: id,
			OwnerID:   args[1],
		})
	}),
}
