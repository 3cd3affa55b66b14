package worker

// sharePeersOperations handles telling every known peer about the full peer
// list after a registration.
func (w *Worker) sharePeersOperations() {
	w.evHandler("worker: sharePeersOperations: G started")
	defer w.evHandler("worker: sharePeersOperations: G completed")

	for {
		select {
		case <-w.peerSharing:
			if !w.isShutdown() {
				w.state.NetSendPeersToPeers()
			}
		case <-w.shut:
			w.evHandler("worker: sharePeersOperations: received shut signal")
			return
		}
	}
}
