// Package event fans domain events out to the in-process real-time channel
// and the external push service. Delivery is best effort on both sinks: a
// failed broadcast or push is logged and counted but never surfaces to the
// caller, whose domain mutation has already committed.
package event

import (
	"strings"

	"polling-service/prometheus"

	"go.uber.org/zap"
)

// Broadcaster is the in-process real-time channel, keyed by room name.
type Broadcaster interface {
	Broadcast(room, event string, payload interface{})
}

// Pusher is the external push service, keyed by channel names.
type Pusher interface {
	Trigger(channels []string, event string, data interface{}) error
}

type Bus struct {
	rt   Broadcaster
	push Pusher
	log  *zap.Logger
}

func NewBus(rt Broadcaster, push Pusher, log *zap.Logger) *Bus {
	return &Bus{rt: rt, push: push, log: log}
}

// Publish broadcasts to the tenant room and triggers the tenant's org push
// channel. The room broadcast is in-process and completes before the push
// trigger is issued; the trigger itself runs in the background, bounded only
// by the push client's own timeout.
func (b *Bus) Publish(tenantKey, event string, payload interface{}) {
	b.rt.Broadcast(tenantKey, event, payload)
	b.trigger([]string{"org-" + tenantKey}, event, payload)
}

// PublishLocal broadcasts to the tenant room only, with no push trigger.
func (b *Bus) PublishLocal(tenantKey, event string, payload interface{}) {
	b.rt.Broadcast(tenantKey, event, payload)
}

// PublishUser fans out like Publish but additionally targets the subject's
// personal room and, on the push side, the subject and admin channels.
func (b *Bus) PublishUser(tenantKey, userID, event string, payload interface{}) {
	b.rt.Broadcast(tenantKey, event, payload)
	b.rt.Broadcast("user:"+userID, event, payload)
	b.trigger([]string{
		"org-" + tenantKey,
		"user-" + userID,
		"admin-" + tenantKey,
	}, event, payload)
}

func (b *Bus) trigger(channels []string, event string, payload interface{}) {
	// Push channel event names use dashes: question:new -> question-new.
	name := strings.ReplaceAll(event, ":", "-")
	go func() {
		if err := b.push.Trigger(channels, name, payload); err != nil {
			prometheus.RecordEventFailure("push")
			b.log.Warn("push trigger failed",
				zap.String("event", name),
				zap.Strings("channels", channels),
				zap.Error(err))
		}
	}()
}
