package cmd

import (
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var noReward bool

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine a block, paying the reward to the wallet",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().BoolVar(&noReward, "no-reward", false, "Mine the pending transactions without a reward.")
}

func mineRun(cmd *cobra.Command, args []string) {
	var req struct {
		MinerAddress string `json:"miner_address,omitempty"`
	}

	if !noReward {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}
		req.MinerAddress = signature.PublicKeyToAddress(&privateKey.PublicKey)
	}

	var resp map[string]any
	if err := send(http.MethodPost, "/api/mine", req, &resp); err != nil {
		log.Fatal(err)
	}

	show(resp)
}
