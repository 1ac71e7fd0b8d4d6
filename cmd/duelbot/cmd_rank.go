package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wordduel/duel"
)

var rankTop int

var rankCmd = &cobra.Command{
	Use:   "rank <system-word>",
	Short: "Show how every candidate scores against a system word",
	Long:  `Dry run: ranks the catalog against the system word without recording usage.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().IntVarP(&rankTop, "top", "t", 10, "rows to print (0 for all)")
}

func runRank(cmd *cobra.Command, args []string) error {
	system := strings.Join(args, " ")
	rt, err := openRuntime(cmd.Context(), runtimeOptions{warmStart: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	ranked := rt.engine.Rank(system)
	if rankTop > 0 && len(ranked) > rankTop {
		ranked = ranked[:rankTop]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s vs %q\n", rt.engine.Mode(), system)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if rt.engine.Mode() == duel.ModeExpectedCost {
		fmt.Fprintln(tw, "#\tWORD\tCOST\tADJUSTED\tP(WIN)\tEXPECTED\tSCORE")
		for i, s := range ranked {
			fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.2f\t%.3f\t%.2f\t%.2f\n",
				i+1, s.Word.Text, s.Word.Cost, s.AdjustedCost, s.Probability, s.ExpectedCost, s.FinalScore)
		}
	} else {
		fmt.Fprintln(tw, "#\tWORD\tCOST\tAFFINITY\tBONUS\tLEARNED\tTOTAL")
		for i, s := range ranked {
			fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.2f\t%.1f\t%.2f\t%.2f\n",
				i+1, s.Word.Text, s.Word.Cost, s.Affinity, s.ClusterBonus, s.LearnedCost, s.Total)
		}
	}
	return tw.Flush()
}
