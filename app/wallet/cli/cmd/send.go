package cmd

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and send a transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address or wallet name of the receiver.")
	sendCmd.Flags().StringVarP(&amount, "amount", "v", "0", "Amount to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	// Receivers can be named by the key files kept next to this wallet.
	ns, err := nameservice.New(accountPath)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := database.NewTransferTx(&privateKey.PublicKey, ns.Resolve(to), json.Number(amount))
	if err != nil {
		log.Fatal(err)
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	var resp database.Tx
	if err := send(http.MethodPost, "/api/transaction", signedTx, &resp); err != nil {
		log.Fatal(err)
	}

	show(resp)
}
