package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/lookup"
	"github.com/Figliar/extension-plus-API/lowering"
	"github.com/Figliar/extension-plus-API/syntax"
	"github.com/Figliar/extension-plus-API/syntax/gopherlua"
	"github.com/Figliar/extension-plus-API/syntax/sitter"
)

// BatchOptions controls a batch run
type BatchOptions struct {
	Tables   *lookup.Tables
	Logger   logging.Logger
	ShowTree bool
	Verbose  bool
}

// BatchMode translates every script in paths, each into its own workspace,
// and writes the results to out in argument order
func BatchMode(ctx context.Context, cfg *Config, paths []string, opts BatchOptions, out io.Writer) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files")
	}

	outputs := make([]bytes.Buffer, len(paths))
	failed := make([]bool, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Batch.Workers, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			failed[i] = translateFile(ctx, cfg, path, opts, &outputs[i]) != nil
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	count := 0
	for i := range paths {
		if len(paths) > 1 {
			fmt.Fprintf(out, "== %s\n", paths[i])
		}
		if _, err := out.Write(outputs[i].Bytes()); err != nil {
			return err
		}
		if failed[i] {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%d of %d files failed", count, len(paths))
	}
	return nil
}

// translateFile lowers one script and writes its dump or its errors to out
func translateFile(ctx context.Context, cfg *Config, path string, opts BatchOptions, out io.Writer) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithSource(path)

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return err
	}

	root, err := gopherlua.Parse(src, path)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		writeDiagnostics(ctx, out, src)
		logger.ErrorTranslation(err)
		return err
	}
	if opts.ShowTree {
		fmt.Fprint(out, syntax.Dump(root))
	}

	ws := blocks.NewMemoryWorkspace(nil)
	session, err := lowering.NewSession(ws, opts.Tables, cfg.SessionOptions(logger)...)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return err
	}

	report, err := session.Translate(root)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		writeDiagnostics(ctx, out, src)
		return err
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warning: %v\n", w)
	}
	fmt.Fprint(out, blocks.Dump(ws))

	if opts.Verbose {
		logger.Info("translated",
			logging.IntField("blocks", len(ws.Blocks())),
			logging.IntField("stacks", len(report.TopBlocks)),
			logging.IntField("signatures", len(report.Signatures)))
	}
	return nil
}

// writeDiagnostics lists the tree-sitter view of what is broken in src
func writeDiagnostics(ctx context.Context, out io.Writer, src []byte) {
	diags, err := sitter.Diagnose(ctx, src)
	if err != nil {
		fmt.Fprintf(out, "  (diagnostics unavailable: %v)\n", err)
		return
	}
	for _, d := range diags {
		fmt.Fprintf(out, "  %s\n", d)
	}
}
