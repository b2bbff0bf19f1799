package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/inodb/wgs-report/internal/pipeline"
	"github.com/inodb/wgs-report/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report pipeline over HTTP",
		Long: `Serve the report pipeline over HTTP. Requests name files on this host.

  POST /v1/reports   build and publish a workbook
  POST /v1/checks    validate a workbook
  GET  /healthz`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd, map[string]string{
				"serve.addr": "addr",
				keyOutDir:    "out-dir",
				keyTSV:       "tsv",
			}); err != nil {
				return err
			}
			if !a.v.GetBool("log.verbose") {
				gin.SetMode(gin.ReleaseMode)
			}

			s := server.New(pipeline.Options{
				OutDir: a.v.GetString(keyOutDir),
				TSV:    a.v.GetBool(keyTSV),
			}, version)
			s.SetLogger(a.logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err := s.Run(ctx, a.v.GetString("serve.addr"))
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().StringP("out-dir", "d", ".", "default output directory")
	cmd.Flags().Bool("tsv", false, "also write tab-delimited exports by default")
	return cmd
}
