// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

package events

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// StatsHandler reacts to one refresh event.
type StatsHandler func(ctx context.Context, ev StatsRefreshed) error

// Listener subscribes to TopicStatsRefreshed and runs a handler per event.
// It implements suture.Service.
type Listener struct {
	bus     *Bus
	name    string
	handler StatsHandler
	logger  zerolog.Logger
}

// NewListener creates a listener.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewListener(bus *Bus, name string, handler StatsHandler, logger zerolog.Logger) *Listener {
	return &Listener{
		bus:     bus,
		name:    name,
		handler: handler,
		logger:  logger.With().Str("listener", name).Logger(),
	}
}

// Serve consumes events until ctx is cancelled. Undecodable payloads are
// acked and dropped; handler failures are nacked so GoChannel redelivers.
func (l *Listener) Serve(ctx context.Context) error {
	msgs, err := l.bus.Subscribe(ctx, TopicStatsRefreshed)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("event channel closed")
			}
			ev, err := Unmarshal(msg.Payload)
			if err != nil {
				l.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping undecodable event")
				msg.Ack()
				continue
			}
			if err := l.handler(ctx, ev); err != nil {
				l.logger.Error().Err(err).Str("event_id", ev.EventID).Msg("Event handler failed")
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

// String names the service in supervisor logs.
func (l *Listener) String() string {
	return "events-listener-" + l.name
}
