// Package test provides an in-memory network for exercising round-based
// protocols across multiple in-process parties.
package test

import (
	"sync"

	"github.com/quorumsig/frost/internal/round"
	"github.com/quorumsig/frost/pkg/party"
)

// Network routes protocol messages between in-process parties over
// channels.
type Network struct {
	parties          party.IDSlice
	listenChannels   map[party.ID]chan *round.Message
	done             chan struct{}
	closedListenChan chan *round.Message
	mtx              sync.Mutex
}

// NewNetwork creates a network for the given parties.
func NewNetwork(parties party.IDSlice) *Network {
	closed := make(chan *round.Message)
	close(closed)
	n := &Network{
		parties:          parties,
		listenChannels:   make(map[party.ID]chan *round.Message, len(parties)),
		closedListenChan: closed,
	}
	for _, id := range parties {
		n.listenChannels[id] = make(chan *round.Message, 4*len(parties)*len(parties))
	}
	return n
}

// Next returns the channel of messages addressed to id.
func (n *Network) Next(id party.ID) <-chan *round.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	ch, ok := n.listenChannels[id]
	if !ok {
		return n.closedListenChan
	}
	return ch
}

// Send routes one message: broadcasts fan out to every other party.
func (n *Network) Send(msg *round.Message) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	for id, ch := range n.listenChannels {
		if id == msg.From {
			continue
		}
		if msg.Broadcast || msg.To == id {
			ch <- msg
		}
	}
}

// Quit removes a party from the network, closing its channel.
func (n *Network) Quit(id party.ID) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if ch, ok := n.listenChannels[id]; ok {
		close(ch)
		delete(n.listenChannels, id)
	}
}
