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

package rollback

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/suse/snapper-rollback/pkg/btrfs"
	"github.com/suse/snapper-rollback/pkg/config"
	"github.com/suse/snapper-rollback/pkg/snapper"
	"github.com/suse/snapper-rollback/pkg/sys"
	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

const backupTimeLayout = "2006-01-02T15:04"

type Option func(*Rollback)

// Rollback swaps the active subvolume of a btrfs filesystem with a snapper
// snapshot. In dry-run mode every mutating step is replaced with an INFO
// line printing the equivalent shell command.
type Rollback struct {
	ctx    context.Context
	s      *sys.System
	cfg    *config.Config
	dryRun bool
	now    func() time.Time
}

func WithDryRun() Option {
	return func(r *Rollback) {
		r.dryRun = true
	}
}

// WithTimeFunc sets the clock used to name the backup of the replaced
// subvolume
func WithTimeFunc(now func() time.Time) Option {
	return func(r *Rollback) {
		r.now = now
	}
}

func New(ctx context.Context, s *sys.System, cfg *config.Config, opts ...Option) *Rollback {
	rollback := &Rollback{
		ctx: ctx,
		s:   s,
		cfg: cfg,
		now: time.Now,
	}
	for _, o := range opts {
		o(rollback)
	}
	return rollback
}

// Run replaces the currently active subvolume with a new writable snapshot
// of the given snapper snapshot. The replaced subvolume is kept next to it
// under a timestamped name, a reboot completes the rollback.
func (r Rollback) Run(snapshotID int) error {
	err := r.EnsureMounted()
	if err != nil {
		return err
	}
	err = r.swap(snapshotID)
	if err != nil {
		return err
	}
	if r.cfg.UnmountBtrfsRoot {
		return r.EnsureUnmounted()
	}
	return nil
}

// EnsureMounted mounts the top level subvolume to the configured mountpoint,
// creating the mountpoint directory first if needed. An already mounted
// target is left untouched. Without a configured device the device
// resolution is left to the fstab.
func (r Rollback) EnsureMounted() error {
	target := r.cfg.Mountpoint
	ok, _ := vfs.IsDir(r.s.FS(), target)
	if !ok {
		if r.dryRun {
			r.s.Logger().Info("mkdir -p '%s'", target)
		} else {
			err := vfs.MkdirAll(r.s.FS(), target, vfs.DirPerm)
			if err != nil {
				return fmt.Errorf("creating directory '%s': %w", target, err)
			}
		}
	}

	mounted, err := r.isMounted(target)
	if err != nil {
		return err
	}
	if mounted {
		return nil
	}

	if r.dryRun {
		r.s.Logger().Info("%s", mountCmd(r.cfg.Dev, target))
		return nil
	}
	err = r.s.Mounter().Mount(r.cfg.Dev, target, "", []string{"subvolid=5"})
	if err != nil {
		return fmt.Errorf("unable to mount %s: %w", target, err)
	}
	return nil
}

// EnsureUnmounted unmounts the configured mountpoint. An already unmounted
// target only gets a warning.
func (r Rollback) EnsureUnmounted() error {
	target := r.cfg.Mountpoint
	if r.dryRun {
		r.s.Logger().Info("umount %s", target)
		return nil
	}

	mounted, err := r.isMounted(target)
	if err != nil {
		return err
	}
	if !mounted {
		r.s.Logger().Warn("Not mounted: %s", target)
		return nil
	}

	err = r.s.Mounter().Unmount(target)
	if err != nil {
		return fmt.Errorf("unable to unmount %s: %w", target, err)
	}
	return nil
}

// swap renames the active subvolume out of the way and snapshots the
// rollback source to its place. If the snapshot calls fail before a new
// subvolume is in place the renamed one is moved back.
func (r Rollback) swap(snapshotID int) error {
	main := r.cfg.MainPath()
	backup := main + r.now().Format(backupTimeLayout)
	source := snapper.SnapshotPath(r.cfg.SnapshotsRoot(), snapshotID)

	if r.dryRun {
		r.s.Logger().Info("mv %s %s", main, backup)
		r.s.Logger().Info("btrfs subvolume snapshot %s %s", source, main)
		if r.cfg.SetDefaultSubvol {
			r.s.Logger().Info("btrfs subvolume set-default %s", main)
		}
		r.s.Logger().Info("[DRY-RUN MODE] Rollback to %s complete. Reboot to finish", source)
		return nil
	}

	err := r.s.FS().Rename(main, backup)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.s.Logger().Error("Missing %s: Is %s mounted with the option subvolid=5?", main, r.device())
		}
		return fmt.Errorf("renaming %s to %s: %w", main, backup, err)
	}

	err = btrfs.CreateSnapshot(r.ctx, r.s, main, source)
	if err == nil && r.cfg.SetDefaultSubvol {
		err = btrfs.SetDefaultSubvolume(r.ctx, r.s, main)
	}
	if err != nil {
		r.s.Logger().Error("%v", err)
		return r.restore(main, backup, err)
	}

	r.s.Logger().Info("Rollback to %s complete. Reboot to finish", source)
	return nil
}

// restore moves the renamed subvolume back to its place unless the failed
// snapshot calls already left a new subvolume there.
// TODO: a snapshot command killed half way can leave a partial subvolume at
// the main path, which skips the rename back here. Distinguish that from a
// cleanly failed snapshot call.
func (r Rollback) restore(main, backup string, cause error) error {
	ok, _ := vfs.IsDir(r.s.FS(), main)
	if ok {
		return cause
	}
	r.s.Logger().Info("Moving %s back to %s", backup, main)
	err := r.s.FS().Rename(backup, main)
	if err != nil {
		return fmt.Errorf("restoring %s after failed rollback: %w (rollback error: %v)", main, err, cause)
	}
	return cause
}

func (r Rollback) isMounted(target string) (bool, error) {
	mounted, err := r.s.Mounter().IsMountPoint(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking mountpoint %s: %w", target, err)
	}
	return mounted, nil
}

func (r Rollback) device() string {
	if r.cfg.Dev != "" {
		return r.cfg.Dev
	}
	return r.cfg.Mountpoint
}

func mountCmd(dev, target string) string {
	fields := []string{"mount", "-o", "subvolid=5"}
	if dev != "" {
		fields = append(fields, dev)
	}
	fields = append(fields, target)
	return strings.Join(fields, " ")
}
