package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/btcplan/retirement-planner/pkg/money"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Print the current bitcoin price",
	RunE:  runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, warnings := newQuoter(cfg).CurrentPrice(cmd.Context())
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "note:", w)
	}
	fmt.Println(money.New(p).Format())
	return nil
}
