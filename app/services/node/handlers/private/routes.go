package private

import (
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Routes binds all the node to node routes.
func Routes(app *web.App, cfg Config) {
	prv := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodPost, "", "/register", prv.Register)
	app.Handle(http.MethodPost, "", "/register/update", prv.UpdatePeers)
	app.Handle(http.MethodGet, "", "/peers", prv.Peers)
	app.Handle(http.MethodGet, "", "/get/chain", prv.Chain)
	app.Handle(http.MethodGet, "", "/get/un_tx", prv.Mempool)
	app.Handle(http.MethodPost, "", "/update/uncon_tx", prv.SubmitNodeTransaction)
	app.Handle(http.MethodPost, "", "/update/block", prv.ProposeBlock)
}
