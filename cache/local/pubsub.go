package local

import (
	"context"
	"sync"
)

// LocalMessage is one delivered pub/sub message.
type LocalMessage struct {
	Channel string
	Payload string
}

type subscriber struct {
	ch       chan *LocalMessage
	channels map[string]bool
}

// LocalPubSub is an in-process pub/sub used when no Redis is configured.
// Slow subscribers drop messages instead of blocking publishers.
type LocalPubSub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]bool
	bufSize int
}

// NewPubSub creates a LocalPubSub with the given per-subscriber buffer.
func NewPubSub(bufSize int) *LocalPubSub {
	return &LocalPubSub{
		subs:    make(map[*subscriber]bool),
		bufSize: bufSize,
	}
}

// Publish delivers the message to every subscriber of the channel.
func (p *LocalPubSub) Publish(_ context.Context, channel, message string) error {
	msg := &LocalMessage{Channel: channel, Payload: message}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for sub := range p.subs {
		if !sub.channels[channel] {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// Buffer full: drop rather than block the publisher.
		}
	}
	return nil
}

// Subscribe returns a message channel for the given channels and a
// cancel function that unsubscribes and closes it. The subscription is
// also torn down when ctx is done.
func (p *LocalPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *LocalMessage, func(), error) {
	sub := &subscriber{
		ch:       make(chan *LocalMessage, p.bufSize),
		channels: make(map[string]bool, len(channels)),
	}
	for _, c := range channels {
		sub.channels[c] = true
	}

	p.mu.Lock()
	p.subs[sub] = true
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// Close under the write lock so no publisher is mid-send.
			p.mu.Lock()
			delete(p.subs, sub)
			close(sub.ch)
			p.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return sub.ch, cancel, nil
}
