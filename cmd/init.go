package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/nlpdemo/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize nlpdemo configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that points nlpdemo at your model server and writes a .nlpdemo.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run `nlpdemo server` to start the demos on port %d.\n", cfg.Port)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
