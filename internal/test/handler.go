package test

import (
	"github.com/quorumsig/frost/pkg/party"
	"github.com/quorumsig/frost/pkg/protocol"
)

// HandlerLoop pumps messages between a handler and the network until the
// protocol completes. Call in one goroutine per party.
func HandlerLoop(id party.ID, h *protocol.Handler, network *Network) {
	defer network.Quit(id)
	outgoing := h.Listen()
	incoming := network.Next(id)
	for {
		select {
		case msg, ok := <-outgoing:
			if !ok {
				// the protocol completed or failed; drain nothing further
				return
			}
			network.Send(msg)
		case msg, ok := <-incoming:
			if !ok {
				return
			}
			// errors surface through h.Result()
			_ = h.Update(msg)
			if h.Done() {
				// forward anything still buffered before leaving
				for msg := range outgoing {
					network.Send(msg)
				}
				return
			}
		}
	}
}
