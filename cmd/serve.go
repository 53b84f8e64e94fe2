package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/medintel/internal/config"
	"github.com/KaramelBytes/medintel/internal/dashboard"
	"github.com/KaramelBytes/medintel/internal/session"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the media intelligence dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("host") {
			c.Host = serveHost
		}
		if f.Changed("port") {
			c.Port = servePort
		}
		if err := c.Validate(); err != nil {
			return err
		}

		logger, err := newLogger(c)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		store, closeStore, err := openStore(cmd.Context(), c, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		srv, err := dashboard.New(dashboard.Options{Config: c, Logger: logger, Store: store})
		if err != nil {
			return err
		}
		if c.GoogleAPIKey == "" {
			logger.Warn("GOOGLE_API_KEY not set; Gemini analysis is disabled")
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", zap.String("addr", c.Addr()), zap.String("session_store", c.SessionStore))
			errCh <- srv.Start(c.Addr())
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-quit:
		}
		logger.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info("server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}

// openStore builds the configured session store and its close func.
func openStore(ctx context.Context, c *cfgpkg.Global, logger *zap.Logger) (session.Store, func(), error) {
	ttl := c.SessionTTL()
	if c.SessionStore != "redis" {
		ms := session.NewMemoryStore(ttl, 5*time.Minute)
		return ms, func() { _ = ms.Close() }, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := session.NewRedisClient(pingCtx, c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("session store: %w", err)
	}
	logger.Info("redis session store connected", zap.String("addr", c.RedisAddr), zap.Int("db", c.RedisDB))
	rs := session.NewRedisStore(client, ttl)
	return rs, func() { _ = rs.Close() }, nil
}
