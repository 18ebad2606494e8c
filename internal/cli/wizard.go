package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/livingtrust/livingtrust"
	"github.com/livingtrust/livingtrust/internal/adapters/file"
	"github.com/livingtrust/livingtrust/internal/config"
	"github.com/livingtrust/livingtrust/internal/presentation/tui"
	"github.com/livingtrust/livingtrust/pkg/client"
	"github.com/livingtrust/livingtrust/pkg/runner"
)

// WizardOptions configures RunWizard.
type WizardOptions struct {
	SessionID string
	// API submits to a remote server instead of the local trust store.
	API   string
	Token string
	// Plain forces the line runner even on a terminal.
	Plain bool
	// JSON speaks JSON lines on stdin/stdout.
	JSON bool
	In   *os.File
	Out  io.Writer
}

// RunWizard runs one wizard session and prints the created trust.
// Sessions are kept as files in the configured session directory unless
// the store is redis, so an interrupted wizard can be resumed.
func RunWizard(cfg *config.Config, logger *slog.Logger, opts WizardOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	var bopts []BackendOption
	if cfg.Store.Kind != config.StoreRedis {
		bopts = append(bopts, WithSessionStore(file.New(cfg.Store.SessionDir)))
	}
	if opts.API != "" {
		bopts = append(bopts, WithRemoteGateway(client.New(opts.API, client.WithToken(opts.Token))))
	}
	b, err := NewBackend(cfg, logger, bopts...)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	res, err := runWizard(sigCtx, b.Engine, logger, opts)
	if err != nil {
		return HandleExecutionError(err)
	}
	if !opts.JSON && res.Trust != nil {
		PrintSystemMessage(opts.Out, "Trust %s saved with status %s.", res.Trust.ID, res.Trust.Status)
	}
	return nil
}

func runWizard(ctx context.Context, eng *livingtrust.Engine, logger *slog.Logger, opts WizardOptions) (*runner.Result, error) {
	switch {
	case opts.JSON:
		return runner.NewRunner(
			runner.WithInputHandler(runner.NewJSONHandler(opts.In, opts.Out)),
			runner.WithLogger(logger),
			runner.WithSessionID(opts.SessionID),
		).Run(ctx, eng)

	case opts.Plain || !IsTerminal(opts.In):
		return runner.NewRunner(
			runner.WithInputHandler(runner.NewTextHandler(opts.In, opts.Out,
				runner.WithTextHandlerRenderer(tui.NewRenderer()))),
			runner.WithLogger(logger),
			runner.WithSessionID(opts.SessionID),
		).Run(ctx, eng)

	default:
		tui.PrintBanner(opts.Out, livingtrust.Version)
		return tui.Run(ctx, eng, tui.Options{
			SessionID: opts.SessionID,
			Out:       opts.Out,
			Renderer:  tui.NewRenderer(),
			Logger:    logger,
		})
	}
}
