// Package view is the read side of the database, it shapes active campaigns for the api and the cli.
package view

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"ttvdrops/internal/assert"
	"ttvdrops/internal/chrono"
	"ttvdrops/internal/db"
	"ttvdrops/internal/telemetry"
)

const report_db_query = "db.query"

// DEFAULT_DROP_IMAGE is shown for drops whose benefit has no image.
const DEFAULT_DROP_IMAGE = "https://static-cdn.jtvnw.net/twitch-quests-assets/CAMPAIGN/default.png"

type Benefit struct {
	TwitchID string `json:"twitch_id"`
	Name     string `json:"name"`
	ImageUrl string `json:"image_url"`
}

type Drop struct {
	TwitchID               string    `json:"twitch_id"`
	Name                   string    `json:"name"`
	ImageUrl               string    `json:"image_url"`
	RequiredMinutesWatched int64     `json:"required_minutes_watched"`
	RequiredSubs           int64     `json:"required_subs"`
	Benefits               []Benefit `json:"benefits"`
}

type Channel struct {
	Name      string `json:"name"`
	TwitchUrl string `json:"twitch_url"`
}

type Campaign struct {
	TwitchID       string     `json:"twitch_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	ImageUrl       string     `json:"image_url,omitempty"`
	DetailsUrl     string     `json:"details_url,omitempty"`
	AccountLinkUrl string     `json:"account_link_url,omitempty"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         time.Time  `json:"ends_at"`
	Drops          []Drop     `json:"drops"`
	Channels       []Channel  `json:"channels,omitempty"`
}

type Game struct {
	TwitchID  string     `json:"twitch_id"`
	Name      string     `json:"name"`
	BoxArtUrl string     `json:"box_art_url,omitempty"`
	GameUrl   string     `json:"game_url,omitempty"`
	Owner     string     `json:"owner,omitempty"`
	Campaigns []Campaign `json:"campaigns"`
}

type Reward struct {
	TwitchID          string     `json:"twitch_id"`
	Name              string     `json:"name"`
	ThumbnailImageUrl string     `json:"thumbnail_image_url,omitempty"`
	RedemptionUrl     string     `json:"redemption_url,omitempty"`
	EarnableUntil     *time.Time `json:"earnable_until,omitempty"`
}

type RewardCampaign struct {
	TwitchID    string     `json:"twitch_id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	ImageUrl    string     `json:"image_url,omitempty"`
	ExternalUrl string     `json:"external_url,omitempty"`
	Game        string     `json:"game,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      time.Time  `json:"ends_at"`
	Rewards     []Reward   `json:"rewards"`
}

type View struct {
	qry  *db.Queries
	time chrono.TimeAPI
	tel  telemetry.API
}

func NewView(qry *db.Queries, clock chrono.TimeAPI, tel telemetry.API) View {
	assert.NotNil(qry)
	assert.NotNil(clock)
	assert.NotNil(tel)
	return View{
		qry:  qry,
		time: clock,
		tel:  tel,
	}
}

func optionalTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time.UTC()
	return &value
}

func (v View) failed(err error) error {
	v.tel.ReportBroken(report_db_query, err)
	return err
}

// ActiveGames lists games with at least one ACTIVE campaign that has not ended yet. Campaigns are
// ordered by end time, so are the games by their first campaign. Campaigns without drops are left out.
func (v View) ActiveGames(ctx context.Context) ([]Game, error) {
	campaigns, err := v.qry.ListActiveDropCampaigns(ctx, v.time.Now())
	if err != nil {
		return nil, v.failed(err)
	}

	var games []Game
	index := map[string]int{}
	for _, row := range campaigns {
		campaign, err := v.campaign(ctx, row)
		if err != nil {
			return nil, err
		}
		if len(campaign.Drops) == 0 {
			v.tel.ReportDebug("active campaign has no drops", telemetry.KV{Key: "twitch_id", Value: row.TwitchID})
			continue
		}

		i, ok := index[row.GameID.String]
		if !ok {
			game, err := v.game(ctx, row.GameID)
			if err != nil {
				return nil, err
			}
			games = append(games, game)
			i = len(games) - 1
			index[row.GameID.String] = i
		}
		games[i].Campaigns = append(games[i].Campaigns, campaign)
	}

	// campaigns come sorted by end time so the first campaign of each game is its earliest ending one
	sort.SliceStable(games, func(a, b int) bool {
		return games[a].Campaigns[0].EndsAt.Before(games[b].Campaigns[0].EndsAt)
	})
	return games, nil
}

func (v View) game(ctx context.Context, gameID sql.NullString) (Game, error) {
	if !gameID.Valid {
		return Game{Name: "Unknown"}, nil
	}
	row, err := v.qry.GetGame(ctx, gameID.String)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{TwitchID: gameID.String, Name: "Unknown"}, nil
	}
	if err != nil {
		return Game{}, v.failed(err)
	}

	game := Game{
		TwitchID:  row.TwitchID,
		Name:      row.Name.String,
		BoxArtUrl: row.BoxArtUrl.String,
		GameUrl:   row.GameUrl.String,
	}
	if row.OwnerID.Valid {
		owner, err := v.qry.GetOwner(ctx, row.OwnerID.String)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return Game{}, v.failed(err)
		}
		game.Owner = owner.Name.String
	}
	return game, nil
}

func (v View) campaign(ctx context.Context, row db.DropCampaign) (Campaign, error) {
	campaign := Campaign{
		TwitchID:       row.TwitchID,
		Name:           row.Name.String,
		Description:    row.Description.String,
		ImageUrl:       row.ImageUrl.String,
		DetailsUrl:     row.DetailsUrl.String,
		AccountLinkUrl: row.AccountLinkUrl.String,
		StartsAt:       optionalTime(row.StartsAt),
		EndsAt:         row.EndsAt.Time.UTC(),
	}

	drops, err := v.qry.ListTimeBasedDropsByCampaign(ctx, sql.NullString{String: row.TwitchID, Valid: true})
	if err != nil {
		return Campaign{}, v.failed(err)
	}
	for _, dropRow := range drops {
		benefits, err := v.qry.ListBenefitsByDrop(ctx, sql.NullString{String: dropRow.TwitchID, Valid: true})
		if err != nil {
			return Campaign{}, v.failed(err)
		}
		drop := Drop{
			TwitchID:               dropRow.TwitchID,
			Name:                   dropRow.Name.String,
			ImageUrl:               DEFAULT_DROP_IMAGE,
			RequiredMinutesWatched: dropRow.RequiredMinutesWatched.Int64,
			RequiredSubs:           dropRow.RequiredSubs.Int64,
			Benefits:               make([]Benefit, 0, len(benefits)),
		}
		for _, benefit := range benefits {
			drop.Benefits = append(drop.Benefits, Benefit{
				TwitchID: benefit.TwitchID,
				Name:     benefit.Name.String,
				ImageUrl: benefit.ImageUrl.String,
			})
		}
		if len(drop.Benefits) > 0 && drop.Benefits[0].ImageUrl != "" {
			drop.ImageUrl = drop.Benefits[0].ImageUrl
		}
		campaign.Drops = append(campaign.Drops, drop)
	}

	channels, err := v.qry.ListChannelsByDropCampaign(ctx, row.TwitchID)
	if err != nil {
		return Campaign{}, v.failed(err)
	}
	for _, channel := range channels {
		campaign.Channels = append(campaign.Channels, Channel{
			Name:      channel.DisplayName.String,
			TwitchUrl: channel.TwitchUrl.String,
		})
	}
	return campaign, nil
}

// ActiveRewardCampaigns lists reward campaigns that have not ended yet, soonest ending first.
func (v View) ActiveRewardCampaigns(ctx context.Context) ([]RewardCampaign, error) {
	rows, err := v.qry.ListActiveRewardCampaigns(ctx, v.time.Now())
	if err != nil {
		return nil, v.failed(err)
	}

	out := make([]RewardCampaign, 0, len(rows))
	for _, row := range rows {
		campaign := RewardCampaign{
			TwitchID:    row.TwitchID,
			Name:        row.Name.String,
			Brand:       row.Brand.String,
			Summary:     row.Summary.String,
			ImageUrl:    row.ImageUrl.String,
			ExternalUrl: row.ExternalUrl.String,
			StartsAt:    optionalTime(row.StartsAt),
			EndsAt:      row.EndsAt.Time.UTC(),
			Rewards:     []Reward{},
		}
		if row.GameID.Valid {
			game, err := v.game(ctx, row.GameID)
			if err != nil {
				return nil, err
			}
			campaign.Game = game.Name
		}

		rewards, err := v.qry.ListRewardsByCampaign(ctx, sql.NullString{String: row.TwitchID, Valid: true})
		if err != nil {
			return nil, v.failed(err)
		}
		for _, reward := range rewards {
			campaign.Rewards = append(campaign.Rewards, Reward{
				TwitchID:          reward.TwitchID,
				Name:              reward.Name.String,
				ThumbnailImageUrl: reward.ThumbnailImageUrl.String,
				RedemptionUrl:     reward.RedemptionUrl.String,
				EarnableUntil:     optionalTime(reward.EarnableUntil),
			})
		}
		out = append(out, campaign)
	}
	return out, nil
}
