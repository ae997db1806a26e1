package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackielii/routemodules"
	"github.com/jackielii/routemodules/internal/config"
	"github.com/jackielii/routemodules/internal/routes"
	"github.com/jackielii/routemodules/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var (
		cfg    config.Config
		logger *zap.Logger
	)
	root := &cobra.Command{
		Use:   "routemodules",
		Short: "Serve route modules over HTTP",
		Long: `routemodules serves a tree of route modules. Each module has a loader,
an optional action, meta, links and a view rendered as an HTML document.

Configuration comes from ROUTEMODULES_* environment variables; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	var addr, router string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Addr = addr
			}
			if router != "" {
				cfg.Router = router
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			var err error
			logger, err = cfg.NewLogger()
			if err != nil {
				return err
			}
			s, err := server.New(cfg, logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.ListenAndServe(ctx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides ROUTEMODULES_ADDR)")
	serve.Flags().StringVar(&router, "router", "", "router backend: std, chi or httprouter (overrides ROUTEMODULES_ROUTER)")

	var asJSON bool
	routesCmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route module tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				manifest, err := routemodules.RouteManifest("/", routes.Routes{}, cfg.IgnoredRoutes...)
				if err != nil {
					return fmt.Errorf("route manifest: %w", err)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(manifest)
			}
			out, err := routemodules.PrintRoutes("/", routes.Routes{}, cfg.IgnoredRoutes...)
			if err != nil {
				return fmt.Errorf("print routes: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	routesCmd.Flags().BoolVar(&asJSON, "json", false, "print the route tree as nested JSON entries")

	root.AddCommand(serve, routesCmd)
	return root
}
