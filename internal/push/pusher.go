// Package push wraps the Pusher Channels HTTP client behind the event bus's
// Pusher interface.
package push

import (
	"net/http"

	"polling-service/pkg/config"

	pusher "github.com/pusher/pusher-http-go/v5"
)

type Client struct {
	client  *pusher.Client
	enabled bool
}

// NewClient builds a push client from configuration. When credentials are
// absent the client is disabled and every trigger is a silent no-op, so local
// development works without a Pusher account.
func NewClient(cfg *config.PusherConfig) *Client {
	if !cfg.Enabled() {
		return &Client{}
	}
	return &Client{
		enabled: true,
		client: &pusher.Client{
			AppID:   cfg.AppID,
			Key:     cfg.Key,
			Secret:  cfg.Secret,
			Cluster: cfg.Cluster,
			Secure:  true,
			HTTPClient: &http.Client{
				Timeout: cfg.Timeout,
			},
		},
	}
}

// Trigger sends one event to the given channels.
func (c *Client) Trigger(channels []string, event string, data interface{}) error {
	if !c.enabled {
		return nil
	}
	return c.client.TriggerMulti(channels, event, data)
}
