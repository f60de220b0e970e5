// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/wxctlgo/internal/config"
	"github.com/staranto/wxctlgo/internal/forecast"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

// yamlSources chains the namespaced and then the bare config key for a flag.
func yamlSources(ns string, key string) cli.ValueSourceChain {
	src := altsrc.StringSourcer(cfg.Source)
	if ns == "" {
		return cli.NewValueSourceChain(yaml.YAML(key, src))
	}
	return cli.NewValueSourceChain(
		yaml.YAML(ns+"."+key, src),
		yaml.YAML(key, src),
	)
}

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns := ""
	if len(params) > 0 {
		ns = params[0]
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output (default: when stdout is a terminal)",
			Sources: yamlSources(ns, "color"),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Usage:   "show timestamps in the local timezone",
			Sources: yamlSources(ns, "local"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: yamlSources(ns, "output"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: yamlSources(ns, "titles"),
			Value:   false,
		},
	}

	return
}

// NewDaysFlag is the number of forecast days requested.
func NewDaysFlag(ns string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "days",
		Aliases: []string{"d"},
		Usage:   "number of forecast days",
		Value:   forecast.DefaultNumberOfDay,
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("WXCTL_DAYS"),
			yaml.YAML(ns+".days", altsrc.StringSourcer(cfg.Source)),
		),
		Validator: func(value int) error {
			return FlagValidators(value, DaysValidator)
		},
	}
}

// NewUnitsFlag is the temperature display unit.
func NewUnitsFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "units",
		Aliases: []string{"u"},
		Usage:   "temperature units, celsius or fahrenheit",
		Value:   string(forecast.Celsius),
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("WXCTL_UNITS"),
			yaml.YAML(ns+".units", altsrc.StringSourcer(cfg.Source)),
		),
		Validator: func(value string) error {
			return FlagValidators(value, UnitsValidator)
		},
	}
}

// pathHas reports whether target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
