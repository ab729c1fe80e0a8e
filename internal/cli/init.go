package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a commented starter scenario file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

var flagInitForce bool

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := "scenario.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if !flagInitForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, cfg.ExampleScenarioYAML(), 0644); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}
