package main

import (
	"github.com/spf13/cobra"

	"wordduel/internal/diag"
	"wordduel/internal/gateway"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagnostics API over the persisted history",
	Long: `Warm starts an engine from the ledger and serves /health, /api/state,
/api/history, /api/rank and the /ws feed until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{warmStart: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	gw := gateway.New(snapshotFunc(rt), logger)
	defer gw.Close()

	addr := serveAddr
	if addr == "" {
		addr = rt.cfg.Diag.Addr
	}
	return diag.Serve(ctx, addr, diagMux(rt, gw), logger)
}
