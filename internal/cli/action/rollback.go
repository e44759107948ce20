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

package action

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/suse/snapper-rollback/internal/cli/cmd"
	"github.com/suse/snapper-rollback/pkg/config"
	"github.com/suse/snapper-rollback/pkg/rollback"
	"github.com/suse/snapper-rollback/pkg/snapper"
	"github.com/suse/snapper-rollback/pkg/sys"
	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

const confirmText = "CONFIRM"

const osRelease = "etc/os-release"

func Rollback(ctx *cli.Context) error {
	var s *sys.System
	args := &cmd.RootArgs
	if ctx.App.Metadata == nil || ctx.App.Metadata["system"] == nil {
		return fmt.Errorf("error setting up initial configuration")
	}
	s = ctx.App.Metadata["system"].(*sys.System)

	if ctx.NArg() != 1 {
		_ = cli.ShowAppHelp(ctx)
		return cli.Exit("", 1)
	}
	snapshotID, err := strconv.Atoi(ctx.Args().First())
	if err != nil {
		return fmt.Errorf("invalid snapshot ID '%s': %w", ctx.Args().First(), err)
	}

	s.Logger().Info("Starting rollback action with args: %+v", args)

	cfg, err := loadConfig(s, args)
	if err != nil {
		return err
	}

	source := snapper.SnapshotPath(cfg.SnapshotsRoot(), snapshotID)
	if pretty := prettyName(s, source); pretty != "" {
		s.Logger().Info("Rolling back to %s (snapshot %d)", pretty, snapshotID)
	}

	ctxCancel, stop := signal.NotifyContext(ctx.Context, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	confirmed, err := confirm(ctxCancel, ctx.App.Reader, ctx.App.Writer)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return cli.Exit("", 1)
		}
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if !confirmed {
		s.Logger().Error("Bad confirmation, exiting...")
		return nil
	}

	opts := []rollback.Option{}
	if args.DryRun {
		opts = append(opts, rollback.WithDryRun())
	}

	err = rollback.New(ctxCancel, s, cfg, opts...).Run(snapshotID)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			s.Logger().Error("Permission denied: %v", err)
			return cli.Exit("", 1)
		}
		return err
	}
	return nil
}

func loadConfig(s *sys.System, args *cmd.RootFlags) (*config.Config, error) {
	cfg, err := config.Load(s.FS(), args.Config, args.Section)
	if err != nil {
		if errors.Is(err, config.ErrSectionNotFound) {
			s.Logger().Error("Missing config section: %s", args.Section)
			return nil, cli.Exit("", 1)
		}
		return nil, err
	}
	return cfg, nil
}

// confirm prompts for the confirmation phrase and reads one line of input.
// The read is abandoned when the context gets cancelled. A plain EOF counts
// as input without a trailing newline, so the phrase can be piped in.
func confirm(ctx context.Context, in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprintf(out, "Are you SURE you want to rollback? Type '%s' to continue: ", confirmText)

	type read struct {
		line string
		err  error
	}
	ch := make(chan read, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		ch <- read{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return false, r.err
		}
		return strings.TrimRight(r.line, "\r\n") == confirmText, nil
	}
}

// prettyName reads the os-release of the rollback target, so the user gets
// to see what they are about to boot into before confirming.
func prettyName(s *sys.System, snapshotPath string) string {
	release := filepath.Join(snapshotPath, osRelease)
	envs, err := vfs.LoadEnvFile(s.FS(), release)
	if err != nil {
		s.Logger().Debug("Cannot read %s: %v", release, err)
		return ""
	}
	return envs["PRETTY_NAME"]
}
