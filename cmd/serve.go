package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailcast/internal/api"
	"github.com/shaharia-lab/mailcast/internal/config"
	"github.com/shaharia-lab/mailcast/internal/directory"
	"github.com/shaharia-lab/mailcast/internal/eventbus"
	"github.com/shaharia-lab/mailcast/internal/logger"
	"github.com/shaharia-lab/mailcast/internal/notifier"
	"github.com/shaharia-lab/mailcast/internal/server"
	"github.com/shaharia-lab/mailcast/internal/storage"
	"github.com/shaharia-lab/mailcast/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the notification dispatch server",
	Long:  "Start the HTTP ingest API and the background dispatcher.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT env var)")
	serveCmd.Flags().String("processor-file", "", "Path to the processor YAML file (overrides MAILCAST_PROCESSOR_FILE)")
	serveCmd.Flags().Int("workers", 3, "Number of dispatch workers")
}

func runServe(cmd *cobra.Command, _ []string) error {
	appCfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		appCfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("processor-file") {
		appCfg.ProcessorFile, _ = cmd.Flags().GetString("processor-file")
	}
	workers, _ := cmd.Flags().GetInt("workers")

	log, err := logger.NewSystemLogger(appCfg.LogDir(), appCfg.SlogLevel())
	if err != nil {
		return err
	}

	processor, err := config.LoadProcessor(appCfg.ProcessorFile)
	if err != nil {
		return err
	}

	tr, err := transport.New(processor.Transport)
	if err != nil {
		return err
	}

	db, err := storage.NewSQLiteDB(appCfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	store := storage.NewSQLiteDeliveryStore(db)

	dir := directory.NewHTTPClient(appCfg.DirectoryBaseURL, directory.StaticTokenSource(appCfg.DirectoryToken))
	resolver := notifier.NewResolver(dir, processor.Broadcast, log)
	dispatcher := notifier.NewDispatcher(resolver, tr, processor.Sender, processor.ReplyTo, store, log)

	bus := eventbus.New(workers)
	bus.Subscribe(func(ctx context.Context, n notifier.Notification) {
		dispatcher.Dispatch(ctx, n)
	})
	defer bus.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	apiSrv := api.New(bus, store, tr, processor, log)
	srv := server.New(apiSrv, appCfg.Port, log)

	log.Info("server starting",
		slog.Int("port", appCfg.Port),
		slog.String("transport", tr.Name()),
	)
	fmt.Fprintf(os.Stderr, "mailcast running on http://localhost:%d (transport: %s)\n", appCfg.Port, tr.Name())

	return srv.Run(ctx)
}
