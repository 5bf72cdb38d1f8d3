package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightgate/api"
	"github.com/Domenick1991/flightgate/config"
	"github.com/Domenick1991/flightgate/internal/server"
	"github.com/gin-gonic/gin"
)

// Run starts the wire-protocol TCP server and the ops HTTP server and blocks
// until the context is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, wireSrv *server.Server, ops *api.OpsHandler) error {
	errCh := make(chan error, 2)

	// wire protocol server
	ln, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Address, err)
	}
	go func() { errCh <- wireSrv.Serve(ctx, ln) }()

	// ops HTTP server
	var httpSrv *http.Server
	if cfg.Ops.Address != "" {
		router := gin.New()
		router.Use(gin.Recovery())
		ops.Register(router)

		httpSrv = &http.Server{
			Addr:    cfg.Ops.Address,
			Handler: router,
		}
		go func() { errCh <- httpSrv.ListenAndServe() }()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if httpSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown ops server: %w", err)
			}
		}
		return nil
	}
}
