package db

import (
	"database/sql"
	"time"
)

type Owner struct {
	TwitchID   string
	Name       sql.NullString
	CreatedAt  time.Time
	ModifiedAt time.Time
}

type Game struct {
	TwitchID   string
	Name       sql.NullString
	Slug       sql.NullString
	BoxArtUrl  sql.NullString
	GameUrl    sql.NullString
	OwnerID    sql.NullString
	CreatedAt  time.Time
	ModifiedAt time.Time
}

type DropCampaign struct {
	TwitchID       string
	Name           sql.NullString
	Description    sql.NullString
	Status         sql.NullString
	StartsAt       sql.NullTime
	EndsAt         sql.NullTime
	AccountLinkUrl sql.NullString
	DetailsUrl     sql.NullString
	ImageUrl       sql.NullString
	GameID         sql.NullString
	CreatedAt      time.Time
	ModifiedAt     time.Time
}

type TimeBasedDrop struct {
	TwitchID               string
	Name                   sql.NullString
	RequiredSubs           sql.NullInt64
	RequiredMinutesWatched sql.NullInt64
	StartsAt               sql.NullTime
	EndsAt                 sql.NullTime
	DropCampaignID         sql.NullString
	CreatedAt              time.Time
	ModifiedAt             time.Time
}

type Benefit struct {
	TwitchID         string
	Name             sql.NullString
	ImageUrl         sql.NullString
	EntitlementLimit sql.NullInt64
	IsIosAvailable   sql.NullBool
	TwitchCreatedAt  sql.NullTime
	TimeBasedDropID  sql.NullString
	OwnerID          sql.NullString
	CreatedAt        time.Time
	ModifiedAt       time.Time
}

type Channel struct {
	TwitchID    string
	Name        sql.NullString
	DisplayName sql.NullString
	TwitchUrl   sql.NullString
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

type RewardCampaign struct {
	TwitchID            string
	Name                sql.NullString
	Brand               sql.NullString
	Summary             sql.NullString
	Instructions        sql.NullString
	Status              sql.NullString
	StartsAt            sql.NullTime
	EndsAt              sql.NullTime
	ExternalUrl         sql.NullString
	AboutUrl            sql.NullString
	IsSiteWide          sql.NullBool
	SubGoal             sql.NullInt64
	MinuteWatchedGoal   sql.NullInt64
	ImageUrl            sql.NullString
	RewardValueUrlParam sql.NullString
	GameID              sql.NullString
	CreatedAt           time.Time
	ModifiedAt          time.Time
}

type Reward struct {
	TwitchID               string
	Name                   sql.NullString
	BannerImageUrl         sql.NullString
	ThumbnailImageUrl      sql.NullString
	EarnableUntil          sql.NullTime
	RedemptionInstructions sql.NullString
	RedemptionUrl          sql.NullString
	RewardCampaignID       sql.NullString
	CreatedAt              time.Time
	ModifiedAt             time.Time
}

type WebhookKind = string

const (
	WEBHOOK_DISCORD WebhookKind = "discord"
	WEBHOOK_EMAIL   WebhookKind = "email"
)

type Webhook struct {
	ID        int64
	Kind      WebhookKind
	Target    string
	Name      string
	CreatedAt time.Time
}
