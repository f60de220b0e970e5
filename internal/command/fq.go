// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/wxctlgo/internal/config"
	"github.com/staranto/wxctlgo/internal/forecast"
	"github.com/staranto/wxctlgo/internal/meta"
)

var fqDefaultAttrs = []string{"date::10", "temp", "unit", "description", "humidity"}

// ErrNoCity is returned when fq has neither an argument nor fq.city.
var ErrNoCity = errors.New("a city is required")

// ForecastRow is one forecast day as emitted by fq. Temperatures are in the
// requested unit.
type ForecastRow struct {
	ID          string    `jsonapi:"primary,forecasts"`
	City        string    `jsonapi:"attr,city"`
	Date        time.Time `jsonapi:"attr,date,iso8601"`
	Sunrise     time.Time `jsonapi:"attr,sunrise,iso8601"`
	Sunset      time.Time `jsonapi:"attr,sunset,iso8601"`
	Temp        float64   `jsonapi:"attr,temp"`
	Min         float64   `jsonapi:"attr,min"`
	Max         float64   `jsonapi:"attr,max"`
	Morn        float64   `jsonapi:"attr,morn"`
	Eve         float64   `jsonapi:"attr,eve"`
	Night       float64   `jsonapi:"attr,night"`
	Unit        string    `jsonapi:"attr,unit"`
	Pressure    int       `jsonapi:"attr,pressure"`
	Humidity    int       `jsonapi:"attr,humidity"`
	Weather     string    `jsonapi:"attr,weather"`
	Description string    `jsonapi:"attr,description"`
	Icon        string    `jsonapi:"attr,icon"`
}

// forecastRows flattens cf into rows, one per day.
func forecastRows(cf *forecast.CityForecast, unit forecast.Unit) []*ForecastRow {
	items := forecast.Items(cf, unit)
	rows := make([]*ForecastRow, 0, len(items))
	for i, item := range items {
		day := cf.Forecasts[i]
		row := &ForecastRow{
			ID:          item.ID,
			City:        cf.Name,
			Date:        item.Date,
			Sunrise:     day.Sunrise,
			Sunset:      day.Sunset,
			Temp:        item.AverageTemp,
			Min:         unit.Convert(day.Temperature.Min),
			Max:         unit.Convert(day.Temperature.Max),
			Morn:        unit.Convert(day.Temperature.Morn),
			Eve:         unit.Convert(day.Temperature.Eve),
			Night:       unit.Convert(day.Temperature.Night),
			Unit:        unit.Symbol(),
			Pressure:    item.Pressure,
			Humidity:    item.Humidity,
			Description: item.Description,
			Icon:        item.IconURL,
		}
		if w, ok := day.PrimaryWeather(); ok {
			row.Weather = w.Name
		}
		rows = append(rows, row)
	}
	return rows
}

func FqCommandBuilder(meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:  "fq",
		Usage: "forecast query",
		UsageText: `wxctl fq <city> [options]
   wxctl fq --interactive [options] < cities.txt`,
		Flags: []cli.Flag{
			NewDaysFlag("fq"),
			NewUnitsFlag("fq"),
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "skip the cache and fetch a fresh forecast",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "search for each city read from stdin, as it is typed",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "report cache statistics on stderr",
			},
		},
		Action: FqCommandAction,
		Meta:   meta,
	}
	return qcb.Build()
}

func FqCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("interactive") {
		return fqInteractive(ctx, cmd)
	}

	runner := &QueryActionRunner[*ForecastRow]{
		CommandName:  "fq",
		SchemaType:   reflect.TypeOf(ForecastRow{}),
		DefaultAttrs: fqDefaultAttrs,
		FetchFn:      fqFetch,
	}
	return runner.Run(ctx, cmd)
}

func fqFetch(ctx context.Context, cmd *cli.Command) ([]*ForecastRow, error) {
	city := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if city == "" {
		city, _ = config.GetString("fq.city", "")
	}
	if city == "" {
		return nil, ErrNoCity
	}

	unit, err := forecast.ParseUnit(cmd.String("units"))
	if err != nil {
		return nil, err
	}

	rt, err := OpenRuntime(ctx)
	if err != nil {
		return nil, err
	}
	defer closeRuntime(ctx, cmd, rt)

	q := forecast.NewQuery(city, cmd.Int("days"))
	var cf forecast.CityForecast
	if cmd.Bool("refresh") {
		cf, err = rt.UseCase.Refresh(ctx, q)
	} else {
		cf, err = rt.UseCase.Execute(ctx, q)
	}
	if err != nil {
		return nil, userError(err)
	}

	return forecastRows(&cf, unit), nil
}

// fqInteractive feeds each line of stdin to a Searcher and emits every
// result as it arrives. Input ends at EOF; the last pending city is still
// searched.
func fqInteractive(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "fq") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(ForecastRow{})) {
		return nil
	}

	unit, err := forecast.ParseUnit(cmd.String("units"))
	if err != nil {
		return err
	}

	rt, err := OpenRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(ctx, cmd, rt)

	debounce, _ := config.GetDuration("search.debounce", forecast.DefaultDebounce)
	s := forecast.NewSearcher(rt.UseCase,
		forecast.WithDebounce(debounce),
		forecast.WithDays(cmd.Int("days")),
	)
	defer s.Close()

	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}
	errw := cmd.Root().ErrWriter
	if isTerminal(in) {
		fmt.Fprintln(errw, "Type a city name; results follow as you stop typing. Ctrl-D ends.")
	}

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			s.Submit(strings.TrimSpace(scanner.Text()))
		}
		if err := scanner.Err(); err != nil {
			log.WithError(err).Warn("failed to read input")
		}
		s.Finish()
	}()

	al := BuildAttrs(cmd, fqDefaultAttrs...)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-s.Results():
			if !ok {
				return nil
			}
			switch {
			case res.Cleared():
				log.Debug("search cleared")
			case res.Err != nil:
				fmt.Fprintf(errw, "%s: %s\n", res.Keyword, forecast.UserMessage(res.Err))
			default:
				if cmd.String("output") == "text" {
					fmt.Fprintln(writer(cmd), res.Forecast.Name)
				}
				// Each result gets its own copy; SliceDiceSpit may add
				// transforms to the list.
				rowAttrs := append(al[:0:0], al...)
				if err := EmitJSONAPISlice(forecastRows(res.Forecast, unit), rowAttrs, cmd); err != nil {
					return err
				}
			}
		}
	}
}

// closeRuntime flushes the cache and, with --stats, reports the counters.
func closeRuntime(ctx context.Context, cmd *cli.Command, rt *Runtime) {
	if err := rt.Close(ctx); err != nil {
		log.WithError(err).Warn("failed to save cache")
	}
	if cmd.Bool("stats") {
		st := rt.UseCase.Stats()
		fmt.Fprintf(cmd.Root().ErrWriter,
			"hits=%d misses=%d fetches=%d coalesced=%d errors=%d saves=%d save_failures=%d\n",
			st.Hits, st.Misses, st.Fetches, st.Coalesced, st.Errors, st.Saves, st.SaveFailures)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
