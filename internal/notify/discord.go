package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ttvdrops/internal/telemetry"

	"github.com/go-resty/resty/v2"
)

// Discord posts messages to discord webhook urls.
type Discord struct {
	client *resty.Client
}

func NewDiscord() Discord {
	client := resty.New().
		SetTimeout(15*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(30*time.Second).
		SetRetryAfter(retryAfter).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return res.StatusCode() == http.StatusTooManyRequests || res.StatusCode() >= 500
		})
	telemetry.InstrumentResty(client, "internal/notify/discord")
	return Discord{client: client}
}

// retryAfter follows the rate limit hint discord sends along with a 429, zero falls back to
// resty's own backoff.
func retryAfter(_ *resty.Client, res *resty.Response) (time.Duration, error) {
	for _, header := range []string{"Retry-After", "X-RateLimit-Reset-After"} {
		value := res.Header().Get(header)
		if value == "" {
			continue
		}
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return 0, nil
}

type discordPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

func (d Discord) Send(ctx context.Context, target string, msg Message) error {
	res, err := d.client.R().
		SetContext(ctx).
		SetBody(discordPayload{
			Content:  msg.Content,
			Username: msg.Username,
		}).
		Post(target)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("discord webhook: %s", res.Status())
	}
	return nil
}
