package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/nlpdemo/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "nlpdemo",
	Short: "Interactive web demos for hosted NLP models",
	Long: `nlpdemo serves interactive pages for sentiment analysis, named entity
recognition and textual entailment models hosted behind a model-serving
API. Each page can attack a prediction with Input Reduction or HotFlip and
explain it with gradient-based saliency maps.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
