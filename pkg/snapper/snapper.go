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

package snapper

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/suse/snapper-rollback/pkg/sys"
)

const (
	// SnapshotDir is the name of the subvolume below each numbered
	// snapshot directory
	SnapshotDir = "snapshot"

	infoFile   = "info.xml"
	dateLayout = "2006-01-02 15:04:05"
)

// Snapshot is the metadata snapper keeps for a single snapshot, read from
// its info.xml file
type Snapshot struct {
	Number      int
	Type        string
	Date        time.Time
	Description string
	Cleanup     string
	// Path is the absolute path of the snapshot subvolume
	Path string
}

type info struct {
	XMLName     xml.Name `xml:"snapshot"`
	Num         int      `xml:"num"`
	Type        string   `xml:"type"`
	Date        string   `xml:"date"`
	Description string   `xml:"description"`
	Cleanup     string   `xml:"cleanup"`
}

// SnapshotPath returns the path of the subvolume for the given snapshot ID
// below the given snapshots root
func SnapshotPath(root string, id int) string {
	return filepath.Join(root, strconv.Itoa(id), SnapshotDir)
}

// List reads the snapper metadata of all snapshots below the given root.
// Directories without a parseable info.xml are skipped with a warning,
// snapper itself keeps transient entries around while creating snapshots.
// The returned list is sorted by snapshot number.
func List(s *sys.System, root string) ([]Snapshot, error) {
	entries, err := s.FS().ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots directory '%s': %w", root, err)
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		num, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		snap, err := readInfo(s, root, num)
		if err != nil {
			s.Logger().Warn("Skipping snapshot %d: %v", num, err)
			continue
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Number < snapshots[j].Number })
	return snapshots, nil
}

func readInfo(s *sys.System, root string, num int) (Snapshot, error) {
	data, err := s.FS().ReadFile(filepath.Join(root, strconv.Itoa(num), infoFile))
	if err != nil {
		return Snapshot{}, err
	}

	var meta info
	err = xml.Unmarshal(data, &meta)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing %s: %w", infoFile, err)
	}

	date, err := time.Parse(dateLayout, meta.Date)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot date: %w", err)
	}

	return Snapshot{
		Number:      meta.Num,
		Type:        meta.Type,
		Date:        date,
		Description: meta.Description,
		Cleanup:     meta.Cleanup,
		Path:        SnapshotPath(root, num),
	}, nil
}
