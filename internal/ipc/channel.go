package ipc

import "pandakernel/internal/ids"

// Side distinguishes a channel's two ends.
type Side int

const (
	SideSender Side = iota
	SideReceiver
)

// ChannelEnd names one end of a channel; both ends carry the same ChannelId
// (spec §3 "Channel").
type ChannelEnd struct {
	Channel ids.ChannelId
	Side    Side
}

// Channel owns a bounded FIFO of envelopes. The kernel is the sole owner and
// mutator of a Channel's queue (spec §5 "Shared-resource policy").
type Channel struct {
	ID    ids.ChannelId
	Queue *MessageQueue
}

// NewChannel allocates a channel with the given capacity.
func NewChannel(id ids.ChannelId, capacity int) *Channel {
	return &Channel{ID: id, Queue: NewMessageQueue(capacity)}
}

// SenderEnd returns this channel's sender end.
func (c *Channel) SenderEnd() ChannelEnd { return ChannelEnd{Channel: c.ID, Side: SideSender} }

// ReceiverEnd returns this channel's receiver end.
func (c *Channel) ReceiverEnd() ChannelEnd { return ChannelEnd{Channel: c.ID, Side: SideReceiver} }
