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
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/suse/snapper-rollback/internal/cli/cmd"
	"github.com/suse/snapper-rollback/pkg/snapper"
	"github.com/suse/snapper-rollback/pkg/sys"
)

// List prints the snapshots found below the configured snapshots subvolume.
// The btrfs root has to be mounted for the snapshots to be visible.
func List(ctx *cli.Context) error {
	var s *sys.System
	args := &cmd.RootArgs
	if ctx.App.Metadata == nil || ctx.App.Metadata["system"] == nil {
		return fmt.Errorf("error setting up initial configuration")
	}
	s = ctx.App.Metadata["system"].(*sys.System)

	cfg, err := loadConfig(s, args)
	if err != nil {
		return err
	}

	snapshots, err := snapper.List(s, cfg.SnapshotsRoot())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTYPE\tDATE\tDESCRIPTION\tCLEANUP")
	for _, snapshot := range snapshots {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", snapshot.Number, snapshot.Type,
			snapshot.Date.Format("2006-01-02 15:04:05"), snapshot.Description, snapshot.Cleanup)
	}
	return w.Flush()
}
