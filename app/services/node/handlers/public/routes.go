package public

import (
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	const group = "api"

	app.Handle(http.MethodGet, group, "/events", pbl.Events)
	app.Handle(http.MethodGet, group, "/genesis", pbl.Genesis)
	app.Handle(http.MethodPost, group, "/wallet/create", pbl.CreateWallet)
	app.Handle(http.MethodDelete, group, "/wallet/:address", pbl.DeleteWallet)
	app.Handle(http.MethodGet, group, "/wallet/balance/:address", pbl.Balance)
	app.Handle(http.MethodPost, group, "/transaction", pbl.SubmitTransaction)
	app.Handle(http.MethodPost, group, "/mine", pbl.Mine)
	app.Handle(http.MethodPost, group, "/faucet", pbl.Faucet)
	app.Handle(http.MethodGet, group, "/blockchain", pbl.Blockchain)
	app.Handle(http.MethodGet, group, "/blockchain/validate", pbl.Validate)
	app.Handle(http.MethodGet, group, "/transactions/pending", pbl.Pending)
	app.Handle(http.MethodGet, group, "/mining/stats", pbl.MiningStats)
}
