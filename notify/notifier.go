// Package notify pushes committed ticket activity to interested listeners
// over PubNub. Delivery is best effort; the marketplace never waits on it.
package notify

import (
	"log/slog"

	pubnub "github.com/pubnub/go/v7"

	"ticket-marketplace/services"
)

const activityChannel = "ticket-activity"

type Publisher struct {
	pn      *pubnub.PubNub
	channel string
}

// NewPublisher builds a publisher from PubNub credentials.
func NewPublisher(publishKey, subscribeKey, userID string) *Publisher {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	pnCfg.PublishKey = publishKey
	pnCfg.SubscribeKey = subscribeKey

	return &Publisher{
		pn:      pubnub.NewPubNub(pnCfg),
		channel: activityChannel,
	}
}

// PublishTicketActivity sends one activity record. Failures are logged and
// dropped; notifications carry no state the store depends on.
func (p *Publisher) PublishTicketActivity(activity services.TicketActivity) {
	_, _, err := p.pn.Publish().
		Channel(p.channel).
		Message(activity).
		Execute()
	if err != nil {
		slog.Error("publish ticket activity", "action", activity.Action, "token_id", activity.TokenID, "error", err)
	}
}
