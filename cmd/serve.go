package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/api"
)

// shutdownTimeout is how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question bank and paper composer as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		origins, _ := cmd.Flags().GetStringSlice("allow-origin")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if e.cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(api.Deps{
			Bank:         e.bank,
			Taxonomy:     e.tax,
			Papers:       e.store.PaperRepo(),
			Layout:       e.cfg.Render,
			Logger:       e.log,
			AllowOrigins: origins,
		})
		srv := &http.Server{
			Addr:              e.cfg.ServerAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			e.log.Info("api listening", "addr", srv.Addr, "db", e.cfg.DBPath)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
			e.log.Info("shutting down")
		}

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			e.log.Error("could not stop server gracefully", "err", err)
			return srv.Close()
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringSlice("allow-origin", nil, "CORS origin allowed to call the API (default any)")
}
