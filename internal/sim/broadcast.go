package sim

import (
	"sync/atomic"

	"github.com/stevengo-git/jbotevolver/internal/world"
)

// ChannelBroadcaster hands snapshots to a buffered channel and drops them
// when the reader falls behind.
type ChannelBroadcaster struct {
	views   chan world.View
	dropped atomic.Int64
}

func NewChannelBroadcaster(buffer int) *ChannelBroadcaster {
	if buffer < 1 {
		buffer = 16
	}
	return &ChannelBroadcaster{views: make(chan world.View, buffer)}
}

func (b *ChannelBroadcaster) Broadcast(view world.View) {
	select {
	case b.views <- view:
	default:
		b.dropped.Add(1)
	}
}

func (b *ChannelBroadcaster) Views() <-chan world.View { return b.views }

func (b *ChannelBroadcaster) Dropped() int64 { return b.dropped.Load() }
