package cmd

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/nlpdemo/internal/tokens"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align attack output with the original tokens",
	Long: `Aligns the token lists an attack returned with the original input and
prints which positions changed. Token lists are whitespace-separated.`,
}

var alignHotFlipCmd = &cobra.Command{
	Use:   "hotflip <original> <flipped>",
	Short: "Mark the tokens HotFlip replaced",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orig, flip, err := tokens.HotFlip(strings.Fields(args[0]), strings.Fields(args[1]))
		if err != nil {
			return err
		}
		printAlignment(cmd.OutOrStdout(), "original", orig, "flipped", flip)
		return nil
	},
}

var alignReduceCmd = &cobra.Command{
	Use:     "input-reduction <original> <reduced>",
	Aliases: []string{"reduce"},
	Short:   "Mark the tokens Input Reduction removed",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orig, red, err := tokens.InputReduction(strings.Fields(args[0]), strings.Fields(args[1]))
		if err != nil {
			return err
		}
		printAlignment(cmd.OutOrStdout(), "original", orig, "reduced", red)
		return nil
	},
}

// printAlignment writes both rows in aligned columns with a marker row
// underneath: ^ for a changed token, x for a removed one.
func printAlignment(w io.Writer, topLabel string, top []tokens.Span, bottomLabel string, bottom []tokens.Span) {
	widths := make([]int, len(top))
	for i := range top {
		widths[i] = utf8.RuneCountInString(top[i].Token)
		if i < len(bottom) {
			if n := utf8.RuneCountInString(bottom[i].Token); n > widths[i] {
				widths[i] = n
			}
		}
	}

	label := len(topLabel)
	if len(bottomLabel) > label {
		label = len(bottomLabel)
	}

	row := func(name string, spans []tokens.Span) string {
		cells := make([]string, len(spans))
		for i, s := range spans {
			tok := s.Token
			if s.Blank {
				tok = strings.Repeat("_", utf8.RuneCountInString(s.Token))
			}
			cells[i] = pad(tok, widths[i])
		}
		return pad(name+":", label+1) + " " + strings.TrimRight(strings.Join(cells, " "), " ")
	}

	marks := make([]string, len(top))
	for i, s := range top {
		m := ""
		switch s.Mark {
		case tokens.MarkChanged:
			m = "^"
		case tokens.MarkDeleted:
			m = "x"
		}
		marks[i] = pad(m, widths[i])
	}

	fmt.Fprintln(w, row(topLabel, top))
	fmt.Fprintln(w, row(bottomLabel, bottom))
	fmt.Fprintln(w, strings.TrimRight(strings.Repeat(" ", label+2)+strings.Join(marks, " "), " "))
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func init() {
	alignCmd.AddCommand(alignHotFlipCmd, alignReduceCmd)
	rootCmd.AddCommand(alignCmd)
}
