package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/progress"
	"github.com/ziadkadry99/nlpdemo/internal/session"
)

var warmupDemo string

var warmupCmd = &cobra.Command{
	Use:   "warmup",
	Short: "Run every demo example against the model server",
	Long: `Runs the canned examples of every enabled demo through the model server,
so cold models load before the first visitor arrives. Each successful run is
stored as a permalink and shows up under recent runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.db.Close()

		targets := a.registry.All()
		if warmupDemo != "" {
			d, err := a.registry.Get(warmupDemo)
			if err != nil {
				return err
			}
			targets = []*demos.Demo{d}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		failed, err := runWarmup(ctx, a.orchestrator, targets, cfg.Saliency.DefaultTopK, progress.NewReporter("Warming up"))
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d example request(s) failed", failed)
		}
		return nil
	},
}

// runWarmup predicts every example of the given demos, one page per
// example, and returns how many requests failed.
func runWarmup(ctx context.Context, orch *session.Orchestrator, targets []*demos.Demo, defaultTopK int, reporter progress.Reporter) (int, error) {
	total := 0
	for _, d := range targets {
		total += len(d.Examples)
	}

	reporter.Start(total)
	done, failed := 0, 0
	for _, d := range targets {
		for i, ex := range d.Examples {
			if err := ctx.Err(); err != nil {
				reporter.Finish(failed)
				return failed, err
			}

			inputs := make(map[string]any, len(ex))
			for k, v := range ex {
				inputs[k] = v
			}

			page := session.NewPage(d, defaultTopK)
			_, err := orch.Run(ctx, page, session.Request{Action: history.ActionPredict, Inputs: inputs})
			page.Close()

			done++
			msg := fmt.Sprintf("%s: example %d", d.Slug, i+1)
			if err != nil {
				failed++
				msg = fmt.Sprintf("%s failed: %v", msg, err)
				if verbose {
					fmt.Fprintf(os.Stderr, "%s\n", msg)
				}
			}
			reporter.Update(done, msg)
		}
	}
	reporter.Finish(failed)
	return failed, nil
}

func init() {
	warmupCmd.Flags().StringVar(&warmupDemo, "demo", "", "Only warm up this demo (slug)")
	rootCmd.AddCommand(warmupCmd)
}
