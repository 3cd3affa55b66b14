// Package peer maintains the peer related information such as the set
// of known peers. The set only grows; a peer that becomes unreachable stays
// known until the process restarts.
package peer

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidPeer is returned when a peer endpoint is not an http(s) URL.
var ErrInvalidPeer = errors.New("invalid peer")

// Peer represents the base URL of a Node in the network.
type Peer struct {
	URL string
}

// New constructs a peer from a base URL. Surrounding space and trailing
// slashes are removed so the same node is always recorded the same way.
func New(rawURL string) (Peer, error) {
	s := strings.TrimRight(strings.TrimSpace(rawURL), "/")

	u, err := url.Parse(s)
	if err != nil {
		return Peer{}, fmt.Errorf("%w: %q: %w", ErrInvalidPeer, rawURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Peer{}, fmt.Errorf("%w: %q: must be an http or https URL", ErrInvalidPeer, rawURL)
	}

	return Peer{URL: s}, nil
}

// Match validates if the specified peer is this peer.
func (p Peer) Match(other Peer) bool {
	return p.URL == other.URL
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.URL
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set and reports whether it was new.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a sorted list of the known peers excluding the specified one.
func (ps *PeerSet) Copy(exclude Peer) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(exclude) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].URL < peers[j].URL })

	return peers
}
