package servehttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var ShutdownTimeout = 3 * time.Second

// StartHTTPServer serves engine on addr until ctx is done, then shuts the server down gracefully.
func StartHTTPServer(ctx context.Context, addr string, engine *gin.Engine) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logrus.Info("[QUIT] shutdown signal has been received, the service will exit in 3 seconds.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	// graceful shutdown http.Server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("[QUIT] http server is shutdown gracefully, new request will be rejected.")
	return nil
}
