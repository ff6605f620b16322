// Resonate - Community Media Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonate

// Package events carries in-process notifications between components over a
// Watermill GoChannel pub/sub. The only producer today is the civic
// refresher; the match service subscribes to drop cached results computed
// against old neighborhood statistics.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// TopicStatsRefreshed is published after every civic refresh cycle.
const TopicStatsRefreshed = "neighborhood_stats.refreshed"

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Bus is a closable in-process publisher and subscriber.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus. A nil logger falls back to the zerolog adapter on
// the global logger.
func NewBus(bufferSize int64, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewZerologAdapter(nil)
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: bufferSize,
		}, logger),
		logger: logger,
	}
}

// Publish sends msg to topic. Messages published with no subscriber are
// dropped.
func (b *Bus) Publish(_ context.Context, topic string, msg *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages on topic. The channel closes when
// ctx is done or the bus is closed. Every message must be acked or nacked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return ch, nil
}

// PublishStatsRefreshed serializes ev and publishes it on TopicStatsRefreshed.
func (b *Bus) PublishStatsRefreshed(ctx context.Context, ev StatsRefreshed) error {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	data, err := Marshal(ev)
	if err != nil {
		return err
	}
	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("cycle", ev.Cycle)
	return b.Publish(ctx, TopicStatsRefreshed, msg)
}

// Close shuts the bus down. Subscribers' channels are closed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
