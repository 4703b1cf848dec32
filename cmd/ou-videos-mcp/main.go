// Command ou-videos-mcp starts the MCP HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ou-videos-mcp/internal/config"
	"ou-videos-mcp/internal/logging"
	"ou-videos-mcp/internal/mcp"
	"ou-videos-mcp/internal/server"
	"ou-videos-mcp/internal/store"
	"ou-videos-mcp/internal/tools"
	"ou-videos-mcp/internal/video"
	"ou-videos-mcp/internal/youtube"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "ou-videos-mcp",
		Short:         "Serve Oklahoma Sooners video search tools over MCP (JSON-RPC over HTTP)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				log.Error(err)
				return err
			}
			if err := logging.Configure(cfg.LogLevel, cfg.LogFormat, nil); err != nil {
				log.Error(err)
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg); err != nil {
				log.Error(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	cmd.Flags().String("port", "", "listen port (env PORT)")
	cmd.Flags().String("backend", "", "video backend: store or youtube (env VIDEO_BACKEND)")
	cmd.Flags().String("log-level", "", "log level (env LOG_LEVEL)")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("backend", cmd.Flags().Lookup("backend"))
	_ = v.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	catalog := tools.DefaultCatalog()
	invoker, err := tools.NewInvoker(catalog, source, tools.WithSearchOrder(video.Order(cfg.SearchOrder)))
	if err != nil {
		return errors.Wrap(err, "building tool invoker")
	}
	dispatcher := mcp.NewDispatcher(catalog, invoker, mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	})
	if cfg.Token == "" {
		log.Warn("MCP_TOKEN not set; endpoints will be open. Set MCP_TOKEN to secure.")
	}
	srv := server.New(cfg.Server(), catalog, dispatcher)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	tlsEnabled := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	scheme := "http"
	if tlsEnabled {
		scheme = "https"
	}
	go server.KeepAlive(ctx, scheme+"://localhost:"+cfg.Port+"/health", cfg.KeepAliveInterval, nil)

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "backend": cfg.Backend, "tls": tlsEnabled}).Info("Starting MCP HTTP server")
		if tlsEnabled {
			errCh <- httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			log.Info("TLS_CERT_FILE/TLS_KEY_FILE not set; serving plain HTTP. Run behind a TLS-terminating proxy.")
			errCh <- httpServer.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
		log.Info("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func openSource(ctx context.Context, cfg config.Config) (video.Source, func(), error) {
	switch cfg.Backend {
	case config.BackendYouTube:
		client := youtube.New(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey, cfg.YouTubeChannelID, nil)
		return client, func() {}, nil
	default:
		log.Infof("Opening %s connection for table %s", cfg.DatabaseDriver, cfg.DatabaseTable)
		st, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DatabaseTable)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
}
