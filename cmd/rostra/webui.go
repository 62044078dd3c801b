package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rostra-dev/rostra/pkg/api"
	"github.com/rostra-dev/rostra/pkg/engine"
	"github.com/rostra-dev/rostra/pkg/events"
	"github.com/rostra-dev/rostra/pkg/fetcher"
	"github.com/rostra-dev/rostra/pkg/log"
	"github.com/rostra-dev/rostra/pkg/metrics"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/types"
	"github.com/rostra-dev/rostra/pkg/views"
)

const shutdownTimeout = 5 * time.Second

var webUICmd = &cobra.Command{
	Use:   "web-ui",
	Short: "Serve the HTTP/JSON API over a local data directory",
	RunE:  runWebUI,
}

func init() {
	webUICmd.Flags().String("data-dir", "", "Directory holding the store and secret file (required)")
	webUICmd.Flags().String("listen", "127.0.0.1:7733", "Address to listen on")
	webUICmd.Flags().String("secret-file", "", "Path to the identity secret file, for config-driven defaults")
	webUICmd.Flags().String("config", "", "Optional YAML file pre-seeding the flags above")
	_ = webUICmd.MarkFlagRequired("data-dir")
}

func runWebUI(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	listen, _ := cmd.Flags().GetString("listen")
	secretFile, _ := cmd.Flags().GetString("secret-file")
	configPath, _ := cmd.Flags().GetString("config")

	if configPath != "" {
		cfg, err := loadWebUIConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if !cmd.Flags().Changed("data-dir") && cfg.DataDir != "" {
			dataDir = cfg.DataDir
		}
		if !cmd.Flags().Changed("listen") && cfg.Listen != "" {
			listen = cfg.Listen
		}
		if !cmd.Flags().Changed("secret-file") && cfg.SecretFile != "" {
			secretFile = cfg.SecretFile
		}
	}

	if dataDir == "" {
		return errors.New("data-dir is required (flag or config)")
	}

	store, err := storage.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	eng := engine.New(store, broker)
	v := views.New(store)

	f := fetcher.New(eng, store, noopTransport{}, broker, fetcher.Config{})
	f.Start()
	defer f.Stop()

	collector := metrics.NewCollector(eng)
	collector.Start()
	defer collector.Stop()

	srv := api.NewServer(eng, v)

	httpSrv := &http.Server{Addr: listen, Handler: srv.Handler()}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listen, err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info().Str("addr", listen).Str("data_dir", dataDir).Msg("serving")
		errCh <- httpSrv.Serve(ln)
	}()

	if secretFile != "" {
		if _, err := os.Stat(secretFile); err != nil {
			log.Logger.Warn().Err(err).Str("secret_file", secretFile).Msg("secret file not found")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// noopTransport satisfies transport.Fetcher with no actual network access:
// this repo ships no peer transport, so every fetch fails and the scheduler
// backs off exactly as it would against an unreachable peer.
type noopTransport struct{}

func (noopTransport) Fetch(ctx context.Context, hash types.ContentHash, contentLen uint32) ([]byte, error) {
	return nil, errors.New("transport: no peer transport configured")
}

