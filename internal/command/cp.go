// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/wxctlgo/internal/cache"
	"github.com/staranto/wxctlgo/internal/cacheutil"
	"github.com/staranto/wxctlgo/internal/meta"
)

// staleTempAge is how old an abandoned snapshot temp file must be before cp
// removes it.
const staleTempAge = time.Hour

func CpCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cp",
		Usage:     "cache purge",
		UsageText: `wxctl cp [--all]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "remove the whole snapshot, not just expired entries",
			},
			tldrFlag,
		},
		Action: CpCommandAction,
	}
}

func CpCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "cp") {
		return nil
	}

	rt, err := OpenRuntime(ctx)
	if err != nil {
		return err
	}
	w := writer(cmd)

	if rt.Store == nil {
		fmt.Fprintln(w, "cache disabled; nothing to purge")
		return nil
	}
	loc := rt.Store.Location(rt.Name)

	if _, ok := rt.Store.(*cache.FileStore); ok {
		if n, err := cacheutil.Purge(staleTempAge); err != nil {
			log.WithError(err).Warn("failed to remove stale temp files")
		} else if n > 0 {
			fmt.Fprintf(w, "removed %d stale temp file(s)\n", n)
		}
	}

	if cmd.Bool("all") {
		if err := rt.Store.Remove(ctx, rt.Name); err != nil {
			return fmt.Errorf("failed to remove %s: %w", loc, err)
		}
		fmt.Fprintf(w, "removed %s\n", loc)
		return nil
	}

	if _, err := rt.Store.Stat(ctx, rt.Name); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "%s: no snapshot\n", loc)
		return nil
	}

	held := rt.Cache.Len()
	live := len(rt.Cache.Entries())
	if err := rt.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "purged %d expired of %d entries in %s\n", held-live, held, loc)
	return nil
}
