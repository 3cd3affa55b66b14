package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// NetRegisterWithPeer announces this node to the peer and returns the peer
// list the peer answered with.
func (s *State) NetRegisterWithPeer(pr peer.Peer) ([]peer.Peer, error) {
	s.evHandler("state: NetRegisterWithPeer: started: %s", pr)
	defer s.evHandler("state: NetRegisterWithPeer: completed: %s", pr)

	req := struct {
		Peer string `json:"peer"`
	}{
		Peer: s.self.URL,
	}

	var resp struct {
		Peers []string `json:"peers"`
	}

	if err := s.send(http.MethodPost, pr.URL+"/register", req, &resp); err != nil {
		return nil, err
	}

	return s.toPeers(resp.Peers), nil
}

// NetSendPeersToPeers shares the full peer list, this node included, with
// every known peer.
func (s *State) NetSendPeersToPeers() {
	s.evHandler("state: NetSendPeersToPeers: started")
	defer s.evHandler("state: NetSendPeersToPeers: completed")

	list := s.RetrievePeerList()

	req := struct {
		Peers []string `json:"peers"`
	}{
		Peers: make([]string, len(list)),
	}
	for i, p := range list {
		req.Peers[i] = p.URL
	}

	for _, pr := range s.RetrieveKnownPeers() {
		if err := s.send(http.MethodPost, pr.URL+"/register/update", req, nil); err != nil {
			s.evHandler("state: NetSendPeersToPeers: WARNING: %s: %s", pr, err)
		}
	}
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(tx database.Tx) {
	s.evHandler("state: NetSendTxToPeers: started: tx[%s]", tx)
	defer s.evHandler("state: NetSendTxToPeers: completed")

	req := struct {
		UnTx database.Tx `json:"un_tx"`
	}{
		UnTx: tx,
	}

	for _, pr := range s.RetrieveKnownPeers() {
		if err := s.send(http.MethodPost, pr.URL+"/update/uncon_tx", req, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s: %s", pr, err)
		}
	}
}

// NetSendBlockToPeers takes the new mined block and sends it to all known
// peers.
func (s *State) NetSendBlockToPeers(block database.Block) {
	s.evHandler("state: NetSendBlockToPeers: started: blk[%d]", block.Index)
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	req := struct {
		Block database.BlockData `json:"block"`
	}{
		Block: database.NewBlockData(block),
	}

	for _, pr := range s.RetrieveKnownPeers() {
		if err := s.send(http.MethodPost, pr.URL+"/update/block", req, nil); err != nil {
			s.evHandler("state: NetSendBlockToPeers: WARNING: %s: %s", pr, err)
			continue
		}

		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", pr)
	}
}

// NetRequestPeerChain asks the peer for its full chain.
func (s *State) NetRequestPeerChain(pr peer.Peer) ([]database.BlockData, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	var resp struct {
		Chain []database.BlockData `json:"chain"`
	}

	if err := s.send(http.MethodGet, pr.URL+"/get/chain", nil, &resp); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: len[%d]", len(resp.Chain))

	return resp.Chain, nil
}

// NetRequestPeerMempool asks the peer for the transactions in its mempool.
func (s *State) NetRequestPeerMempool(pr peer.Peer) ([]database.Tx, error) {
	s.evHandler("state: NetRequestPeerMempool: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerMempool: completed: %s", pr)

	var resp struct {
		UnTx []database.Tx `json:"un_tx"`
	}

	if err := s.send(http.MethodGet, pr.URL+"/get/un_tx", nil, &resp); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerMempool: len[%d]", len(resp.UnTx))

	return resp.UnTx, nil
}

// =============================================================================

// toPeers converts peer URLs, skipping the ones that are not valid.
func (s *State) toPeers(urls []string) []peer.Peer {
	peers := make([]peer.Peer, 0, len(urls))
	for _, u := range urls {
		p, err := peer.New(u)
		if err != nil {
			s.evHandler("state: toPeers: WARNING: %s", err)
			continue
		}
		peers = append(peers, p)
	}

	return peers
}

// send is a helper function to send an HTTP request to a node. Every call
// is bounded by the client timeout.
func (s *State) send(method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
