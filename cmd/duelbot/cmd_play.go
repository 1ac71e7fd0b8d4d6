package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"

	"wordduel/internal/codec"
	"wordduel/internal/diag"
	"wordduel/internal/gameclient"
	"wordduel/internal/gateway"
	"wordduel/internal/match"
)

var (
	playRounds int
	playDiag   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game against the game server",
	Long: `Polls the game server for each round's system word, submits the chosen
word, reads the verdict and feeds it back into the engine. Rounds are
persisted to the ledger and, with --diag, streamed to websocket watchers.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVarP(&playRounds, "rounds", "n", 0, "number of rounds (default from config)")
	playCmd.Flags().BoolVar(&playDiag, "diag", false, "serve the diagnostics API while playing")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{warmStart: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	client, err := gameclient.New(rt.cfg.Game, logger)
	if err != nil {
		return err
	}
	rounds := playRounds
	if rounds <= 0 {
		rounds = rt.cfg.Game.Rounds
	}

	gw := gateway.New(snapshotFunc(rt), logger)
	defer gw.Close()

	var publisher match.Publisher
	if playDiag {
		publisher = gw
	}
	runner := match.NewRunner(rt.engine, client, rt.ledger, publisher, rt.cfg.Engine.Penalty, logger)

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	defer stopServe()
	if playDiag {
		g.Go(func() error {
			return diag.Serve(serveCtx, rt.cfg.Diag.Addr, diagMux(rt, gw), logger)
		})
	}

	var summary match.Summary
	g.Go(func() error {
		defer stopServe()
		var err error
		summary, err = runner.Play(gctx, rounds)
		return err
	})
	err = g.Wait()
	printSummary(cmd.OutOrStdout(), summary)
	return err
}

func snapshotFunc(rt *runtime) gateway.SnapshotFunc {
	return func() (*structpb.Struct, error) {
		return codec.SnapshotToProto(rt.engine.Snapshot())
	}
}

func diagMux(rt *runtime, gw *gateway.Gateway) *http.ServeMux {
	mux := http.NewServeMux()
	diag.NewHTTPHandler(rt.engine, rt.ledger, gw, rt.cfg.Diag.TokenHash, logger).RegisterRoutes(mux)
	return mux
}

func printSummary(w io.Writer, s match.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tSYSTEM\tCHOSEN\tRESULT\tCOST\tTOTAL")
	for _, r := range s.Rounds {
		result := "lost"
		if r.Won {
			result = "won"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.0f\t%.0f\n", r.Round, r.System, r.Chosen.Text, result, r.Cost, r.TotalCost)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "session %s: %d/%d won, total cost %.0f\n", s.SessionID, s.Wins, len(s.Rounds), s.TotalCost)
	logger.Info("session finished",
		zap.String("session", s.SessionID),
		zap.Int("rounds", len(s.Rounds)),
		zap.Int("wins", s.Wins),
		zap.Float64("total_cost", s.TotalCost))
}
