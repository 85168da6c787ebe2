package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailcast/internal/config"
	"github.com/shaharia-lab/mailcast/internal/directory"
	"github.com/shaharia-lab/mailcast/internal/logger"
	"github.com/shaharia-lab/mailcast/internal/notifier"
	"github.com/shaharia-lab/mailcast/internal/transport"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Dispatch a single notification from the command line",
	Long:  "Resolve recipients and send one notification synchronously, without starting the server.",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().String("title", "", "Notification title (required)")
	sendCmd.Flags().String("description", "", "Notification body text")
	sendCmd.Flags().String("link", "", "Link included in the notification")
	sendCmd.Flags().StringSlice("entity", nil, "Target entity reference (repeatable); omit for a broadcast")
	_ = sendCmd.MarkFlagRequired("title")
}

func runSend(cmd *cobra.Command, _ []string) error {
	appCfg, err := config.Load()
	if err != nil {
		return err
	}

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

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	link, _ := cmd.Flags().GetString("link")
	refs, _ := cmd.Flags().GetStringSlice("entity")

	spec := notifier.RecipientSpec{Type: notifier.RecipientBroadcast}
	switch len(refs) {
	case 0:
	case 1:
		spec = notifier.RecipientSpec{Type: notifier.RecipientEntity, EntityRef: refs[0]}
	default:
		spec = notifier.RecipientSpec{Type: notifier.RecipientEntities, EntityRefs: refs}
	}

	dir := directory.NewHTTPClient(appCfg.DirectoryBaseURL, directory.StaticTokenSource(appCfg.DirectoryToken))
	resolver := notifier.NewResolver(dir, processor.Broadcast, log)
	dispatcher := notifier.NewDispatcher(resolver, tr, processor.Sender, processor.ReplyTo, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report := dispatcher.Dispatch(ctx, notifier.Notification{
		Event: notifier.NotificationEvent{
			Origin:  "cli",
			ID:      uuid.NewString(),
			Created: time.Now(),
			Payload: notifier.Payload{Title: title, Description: description, Link: link},
		},
		Recipients: spec,
	})

	fmt.Fprintf(os.Stderr, "sent: %d, failed: %d\n", len(report.Sent), len(report.Failed))
	for _, f := range report.Failed {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Recipient, f.Err)
	}
	if len(report.Sent) == 0 && len(report.Failed) == 0 {
		fmt.Fprintln(os.Stderr, "no recipients resolved")
	}
	return nil
}
