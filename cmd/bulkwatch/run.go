package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/printware/printdesk/internal/adapter/printapi"
	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/poller"
)

func run(ctx context.Context, opts *options, out io.Writer) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client, err := printapi.NewHTTPClient(opts.server, logger)
	if err != nil {
		return err
	}

	cred := printapi.Credential(opts.token)
	if cred == "" {
		cred, err = client.Login(ctx, opts.login, opts.password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	bulkID := opts.bulkID
	if opts.file != "" {
		snap, err := uploadManifest(ctx, client, cred, opts.file)
		if err != nil {
			return err
		}
		bulkID = snap.BulkOrderID
		printStatus(out, snap)
	}

	return watch(ctx, client, cred, bulkID, opts, out)
}

func uploadManifest(ctx context.Context, client *printapi.HTTPClient, cred printapi.Credential, path string) (*model.BulkStatus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	snap, err := client.UploadBulk(ctx, cred, filepath.Base(path), file)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	return snap, nil
}

func watch(ctx context.Context, client *printapi.HTTPClient, cred printapi.Credential, bulkID string, opts *options, out io.Writer) error {
	done := make(chan *model.BulkStatus, 1)
	watcher := poller.New(
		client.StatusFetcher(cred, bulkID),
		opts.interval,
		slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		poller.WithOnChange(func(snap *model.BulkStatus) {
			printStatus(out, snap)
			if snap.Status.IsTerminal() {
				select {
				case done <- snap:
				default:
				}
			}
		}),
	)

	watcher.Start(ctx)
	defer watcher.Stop()

	select {
	case snap := <-done:
		if snap.Status == model.BulkOrderStatusFailed {
			return fmt.Errorf("bulk order %s failed: %s", snap.BulkOrderID, snap.FailureReason)
		}
		return nil
	case <-ctx.Done():
		if err := watcher.Err(); err != nil {
			return fmt.Errorf("interrupted, last poll error: %w", err)
		}
		return ctx.Err()
	}
}

func printStatus(out io.Writer, snap *model.BulkStatus) {
	switch {
	case snap.Status == model.BulkOrderStatusOrderCreated && snap.ParentOrderID != nil:
		fmt.Fprintf(out, "%s\t%s\t%s\tparent=%d designs=%d copies=%d\n",
			snap.BulkOrderID, snap.OrderNumber, snap.Status, *snap.ParentOrderID, snap.DistinctDesigns, snap.TotalCopies)
	case snap.Status == model.BulkOrderStatusFailed && snap.FailureReason != "":
		fmt.Fprintf(out, "%s\t%s\t%s\treason=%q\n", snap.BulkOrderID, snap.OrderNumber, snap.Status, snap.FailureReason)
	default:
		fmt.Fprintf(out, "%s\t%s\t%s\n", snap.BulkOrderID, snap.OrderNumber, snap.Status)
	}
}
