// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"sort"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/wxctlgo/internal/meta"
)

var cqDefaultAttrs = []string{".id:key", "city", "days", "expires::h"}

// CacheEntryRow is one live entry of the forecast cache.
type CacheEntryRow struct {
	ID      string    `jsonapi:"primary,entries"`
	City    string    `jsonapi:"attr,city"`
	Days    int       `jsonapi:"attr,days"`
	First   time.Time `jsonapi:"attr,first,iso8601"`
	Last    time.Time `jsonapi:"attr,last,iso8601"`
	Expires time.Time `jsonapi:"attr,expires,iso8601"`
}

func CqCommandBuilder(meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:      "cq",
		Usage:     "cache query",
		UsageText: `wxctl cq [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "snapshot",
				Usage: "describe the snapshot on stderr",
			},
		},
		Action: CqCommandAction,
		Meta:   meta,
	}
	return qcb.Build()
}

func CqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[*CacheEntryRow]{
		CommandName:  "cq",
		SchemaType:   reflect.TypeOf(CacheEntryRow{}),
		DefaultAttrs: cqDefaultAttrs,
		FetchFn:      cqFetch,
	}
	return runner.Run(ctx, cmd)
}

func cqFetch(ctx context.Context, cmd *cli.Command) ([]*CacheEntryRow, error) {
	rt, err := OpenRuntime(ctx)
	if err != nil {
		return nil, err
	}
	defer closeRuntime(ctx, cmd, rt)

	if cmd.Bool("snapshot") {
		describeSnapshot(ctx, cmd, rt)
	}

	entries := rt.Cache.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ExpiresAt.Before(entries[j].ExpiresAt)
	})

	rows := make([]*CacheEntryRow, 0, len(entries))
	for _, e := range entries {
		row := &CacheEntryRow{
			ID:      e.Key,
			City:    e.Value.Name,
			Days:    len(e.Value.Forecasts),
			Expires: e.ExpiresAt,
		}
		if n := len(e.Value.Forecasts); n > 0 {
			row.First = e.Value.Forecasts[0].Date
			row.Last = e.Value.Forecasts[n-1].Date
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func describeSnapshot(ctx context.Context, cmd *cli.Command, rt *Runtime) {
	errw := cmd.Root().ErrWriter
	if rt.Store == nil {
		fmt.Fprintln(errw, "cache disabled")
		return
	}

	loc := rt.Store.Location(rt.Name)
	info, err := rt.Store.Stat(ctx, rt.Name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(errw, "%s: no snapshot\n", loc)
		return
	case err != nil:
		log.WithError(err).Warnf("failed to stat %s", loc)
		fmt.Fprintf(errw, "%s: unavailable\n", loc)
		return
	}

	fmt.Fprintf(errw, "%s: %s, saved %s, %d of %d entries live, lifetime %s\n",
		loc,
		humanize.Bytes(uint64(info.Size)),
		humanize.Time(info.ModTime),
		len(rt.Cache.Entries()),
		rt.Cache.MaxEntries(),
		rt.Cache.Lifetime(),
	)
}
