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

package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

const (
	// DefaultPath is the configuration file read when no -c flag is given
	DefaultPath = "/etc/snapper-rollback.conf"
	// DefaultSection is the configuration section read when no -s flag is given
	DefaultSection = "root"
)

// ErrSectionNotFound is returned when the requested section is not part of
// the configuration file
var ErrSectionNotFound = errors.New("config section not found")

var requiredKeys = []string{"mountpoint", "subvol_main", "subvol_snapshots"}

// Config describes the btrfs layout of a single target filesystem. One
// configuration file holds one section per target.
type Config struct {
	// Mountpoint is the path the top level subvolume (subvolid=5) gets
	// mounted to
	Mountpoint string
	// SubvolMain is the path of the currently active subvolume, relative
	// to Mountpoint
	SubvolMain string
	// SubvolSnapshots is the path the snapshots live under, relative to
	// Mountpoint
	SubvolSnapshots string
	// Dev is the backing block device, empty means mounting relies on an
	// fstab entry for Mountpoint
	Dev string
	// SetDefaultSubvol toggles marking the restored subvolume as the
	// default one to mount
	SetDefaultSubvol bool
	// UnmountBtrfsRoot toggles unmounting Mountpoint once the rollback
	// completed
	UnmountBtrfsRoot bool
}

// Load reads the given section of an INI style configuration file. The file
// is read through the given filesystem.
func Load(fs vfs.FS, path string, section string) (*Config, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file '%s': %w", path, err)
	}

	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file '%s': %w", path, err)
	}

	sec, err := file.GetSection(section)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, section)
	}

	for _, key := range requiredKeys {
		if !sec.HasKey(key) {
			return nil, fmt.Errorf("missing required key '%s' in section '%s'", key, section)
		}
	}

	return &Config{
		Mountpoint:       sec.Key("mountpoint").String(),
		SubvolMain:       sec.Key("subvol_main").String(),
		SubvolSnapshots:  sec.Key("subvol_snapshots").String(),
		Dev:              sec.Key("dev").String(),
		SetDefaultSubvol: sec.Key("set_default_subvol").MustBool(true),
		UnmountBtrfsRoot: sec.Key("unmount_btrfs_root").MustBool(false),
	}, nil
}

// MainPath returns the absolute path of the currently active subvolume
func (c Config) MainPath() string {
	return filepath.Join(c.Mountpoint, c.SubvolMain)
}

// SnapshotsRoot returns the absolute path snapshots live under
func (c Config) SnapshotsRoot() string {
	return filepath.Join(c.Mountpoint, c.SubvolSnapshots)
}
