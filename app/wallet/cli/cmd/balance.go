package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

type balance struct {
	Address   string  `json:"address"`
	Balance   float64 `json:"balance"`
	Available float64 `json:"available"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	address := signature.PublicKeyToAddress(&privateKey.PublicKey)
	fmt.Println("For Address:", address)

	var b balance
	if err := send(http.MethodGet, "/api/wallet/balance/"+address, nil, &b); err != nil {
		log.Fatal(err)
	}

	fmt.Println("confirmed:", b.Balance)
	fmt.Println("available:", b.Available)
}
