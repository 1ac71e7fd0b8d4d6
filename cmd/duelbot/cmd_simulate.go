package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wordduel/duel"
	"wordduel/internal/match"
)

var simulatePersist bool

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play scripted rounds offline and show what was learned",
	Long: `Runs the rounds listed under "simulate" in the config (a three round demo
by default) with predetermined verdicts, then prints the learned
relationship rows for each system word.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&simulatePersist, "persist", false, "write simulated rounds to the configured ledger")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{memoryLedger: !simulatePersist})
	if err != nil {
		return err
	}
	defer rt.Close()

	script := rt.cfg.Simulate
	if len(script) == 0 {
		script = match.DemoScript()
	}
	runner := match.NewRunner(rt.engine, nil, rt.ledger, nil, rt.cfg.Engine.Penalty, logger)
	summary, err := runner.Simulate(ctx, script)
	out := cmd.OutOrStdout()
	printSummary(out, summary)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, step := range script {
		if seen[step.System] {
			continue
		}
		seen[step.System] = true
		printRelationships(out, rt.engine, step.System)
	}
	return nil
}

func printRelationships(w io.Writer, engine *duel.Engine, system string) {
	type cell struct {
		text  string
		score float64
	}
	var row []cell
	for _, word := range engine.Catalog().Words() {
		if s := engine.Relationship(system, word.Text); s != 0 {
			row = append(row, cell{word.Text, s})
		}
	}
	sort.SliceStable(row, func(i, j int) bool { return row[i].score > row[j].score })

	fmt.Fprintf(w, "\nrelationships for %q:\n", system)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range row {
		fmt.Fprintf(tw, "  %s\t%+.2f\n", c.text, c.score)
	}
	_ = tw.Flush()
}
