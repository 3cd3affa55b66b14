package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// AddKnownPeer provides the ability to add a new peer. This node is never
// added to its own list. It reports whether the peer was new.
func (s *State) AddKnownPeer(p peer.Peer) bool {
	if p.Match(s.self) {
		return false
	}

	if !s.knownPeers.Add(p) {
		return false
	}

	s.evHandler("state: AddKnownPeer: adding peer-node %s", p)
	return true
}

// AddKnownPeers adds every peer in the list and returns how many were new.
func (s *State) AddKnownPeers(peers []peer.Peer) int {
	var added int
	for _, p := range peers {
		if s.AddKnownPeer(p) {
			added++
		}
	}

	return added
}

// RegisterPeer records a peer that announced itself and shares the updated
// peer list with every known peer. It returns the list the new peer should
// know about, which includes this node.
func (s *State) RegisterPeer(p peer.Peer) []peer.Peer {
	s.AddKnownPeer(p)
	s.Worker.SignalSharePeers()

	return s.RetrievePeerList()
}

// RetrievePeerList returns the known peers together with this node.
func (s *State) RetrievePeerList() []peer.Peer {
	peers := s.RetrieveKnownPeers()
	if s.self.URL != "" {
		peers = append(peers, s.self)
	}

	return peers
}
