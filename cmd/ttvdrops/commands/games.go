package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(rewardsCmd)
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "Prints the games that currently have active drop campaigns.",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		games, err := a.view.ActiveGames(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Game", "Campaign", "Ends", "Drops"})
		for _, game := range games {
			for _, campaign := range game.Campaigns {
				drops := make([]string, len(campaign.Drops))
				for i, drop := range campaign.Drops {
					drops[i] = fmt.Sprintf("%s (%d min)", drop.Name, drop.RequiredMinutesWatched)
				}
				t.AppendRow(table.Row{
					game.Name,
					campaign.Name,
					campaign.EndsAt.Local().Format(time.DateTime),
					strings.Join(drops, "\n"),
				})
			}
			t.AppendSeparator()
		}
		t.Render()
		return nil
	}),
}

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Prints the reward campaigns that have not ended yet.",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		campaigns, err := a.view.ActiveRewardCampaigns(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Campaign", "Brand", "Game", "Ends", "Rewards"})
		for _, campaign := range campaigns {
			rewards := make([]string, len(campaign.Rewards))
			for i, reward := range campaign.Rewards {
				rewards[i] = reward.Name
			}
			t.AppendRow(table.Row{
				campaign.Name,
				campaign.Brand,
				campaign.Game,
				campaign.EndsAt.Local().Format(time.DateTime),
				strings.Join(rewards, "\n"),
			})
		}
		t.Render()
		return nil
	}),
}
