package worker

// maxBlockShareRequests bounds the mined blocks waiting to be shared.
const maxBlockShareRequests = 10

// =============================================================================

// shareBlockOperations handles sharing blocks mined by this node.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.state.NetSendBlockToPeers(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}
