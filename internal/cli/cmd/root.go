/*
Copyright © 2025 SUSE LLC
SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/suse/snapper-rollback/pkg/config"
	"github.com/suse/snapper-rollback/pkg/log"
	"github.com/suse/snapper-rollback/pkg/sys"
)

const (
	Usage     = "Roll back a btrfs filesystem to a snapper snapshot"
	ArgsUsage = "SNAPID"
)

type RootFlags struct {
	Debug   bool
	DryRun  bool
	Config  string
	Section string
}

var RootArgs RootFlags

func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "Set logging at debug level",
			Destination: &RootArgs.Debug,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Don't actually do anything, just print the actions out",
			Destination: &RootArgs.DryRun,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       config.DefaultPath,
			Usage:       "Configuration file to use",
			Destination: &RootArgs.Config,
		},
		&cli.StringFlag{
			Name:        "section",
			Aliases:     []string{"s"},
			Value:       config.DefaultSection,
			Usage:       "Configuration section to use",
			Destination: &RootArgs.Section,
		},
	}
}

func Setup(ctx *cli.Context) error {
	s, err := sys.NewSystem()
	if err != nil {
		return err
	}

	if ctx.Bool("debug") {
		s.Logger().SetLevel(log.DebugLevel())
	}
	if ctx.App.Metadata == nil {
		ctx.App.Metadata = map[string]any{}
	}
	ctx.App.Metadata["system"] = s
	return nil
}
