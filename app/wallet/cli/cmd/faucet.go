package cmd

import (
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Request free coins for the wallet",
	Run:   faucetRun,
}

func init() {
	rootCmd.AddCommand(faucetCmd)
}

func faucetRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	req := struct {
		Address string `json:"address"`
	}{
		Address: signature.PublicKeyToAddress(&privateKey.PublicKey),
	}

	var resp map[string]any
	if err := send(http.MethodPost, "/api/faucet", req, &resp); err != nil {
		log.Fatal(err)
	}

	show(resp)
}
