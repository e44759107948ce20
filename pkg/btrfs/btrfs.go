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

package btrfs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/suse/snapper-rollback/pkg/sys"
	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

// CreateSnapshot creates a writable btrfs snapshot to the given path from the
// given base subvolume
func CreateSnapshot(ctx context.Context, s *sys.System, path, base string) error {
	s.Logger().Debug("Creating snapshot: %s", path)
	err := vfs.MkdirAll(s.FS(), filepath.Dir(path), vfs.DirPerm)
	if err != nil {
		return fmt.Errorf("creating snapshot subvolume path %s: %w", path, err)
	}

	cmdOut, err := s.Runner().RunContext(ctx, "btrfs", "subvolume", "snapshot", base, path)
	if err != nil {
		return fmt.Errorf("creating snapshot subvolume '%s': %s: %w", path, string(cmdOut), err)
	}
	return nil
}

// SetDefaultSubvolume sets the given subvolume as the default subvolume to mount
func SetDefaultSubvolume(ctx context.Context, s *sys.System, path string) error {
	s.Logger().Debug("Setting default subvolume")
	_, err := s.Runner().RunContext(ctx, "btrfs", "subvolume", "set-default", path)
	if err != nil {
		return fmt.Errorf("setting default subvolume to '%s': %w", path, err)
	}
	return nil
}
