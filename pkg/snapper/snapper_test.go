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

package snapper_test

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/suse/snapper-rollback/pkg/log"
	"github.com/suse/snapper-rollback/pkg/snapper"
	"github.com/suse/snapper-rollback/pkg/sys"
	sysmock "github.com/suse/snapper-rollback/pkg/sys/mock"
	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

func TestSnapperSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Snapper test suite")
}

const snapshotsRoot = "/mnt/@/.snapshots"

func infoXML(num int, sType, date, description, cleanup string) string {
	return `<?xml version="1.0"?>
<snapshot>
  <type>` + sType + `</type>
  <num>` + strconv.Itoa(num) + `</num>
  <date>` + date + `</date>
  <description>` + description + `</description>
  <cleanup>` + cleanup + `</cleanup>
</snapshot>
`
}

var _ = Describe("Snapper", Label("snapper"), func() {
	var tfs vfs.FS
	var s *sys.System
	var cleanup func()
	var err error
	var buffer *bytes.Buffer
	BeforeEach(func() {
		buffer = &bytes.Buffer{}
		tfs, cleanup, err = sysmock.TestFS(map[string]string{
			snapshotsRoot + "/1/info.xml":        infoXML(1, "single", "2025-07-30 08:15:00", "first root filesystem", ""),
			snapshotsRoot + "/9/info.xml":        infoXML(9, "pre", "2025-08-01 10:30:00", "zypp(zypper)", "number"),
			snapshotsRoot + "/10/info.xml":       infoXML(10, "post", "2025-08-01 10:31:12", "zypp(zypper)", "number"),
			snapshotsRoot + "/7/info.xml":        "<snapshot><num>7",
			snapshotsRoot + "/8/info.xml":        infoXML(8, "single", "not a date", "", ""),
			snapshotsRoot + "/grub-snapshot.cfg": "submenu 'Snapshots'",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(vfs.MkdirAll(tfs, snapshotsRoot+"/11", vfs.DirPerm)).To(Succeed())
		s, err = sys.NewSystem(
			sys.WithFS(tfs), sys.WithLogger(log.New(log.WithBuffer(buffer))),
		)
		Expect(err).NotTo(HaveOccurred())
	})
	AfterEach(func() {
		cleanup()
	})
	It("lists snapshots sorted by number", func() {
		snaps, err := snapper.List(s, snapshotsRoot)
		Expect(err).NotTo(HaveOccurred())
		ids := []int{}
		for _, snap := range snaps {
			ids = append(ids, snap.Number)
		}
		Expect(ids).To(Equal([]int{1, 9, 10}))
	})
	It("parses the snapper metadata", func() {
		snaps, err := snapper.List(s, snapshotsRoot)
		Expect(err).NotTo(HaveOccurred())
		Expect(snaps[1].Type).To(Equal("pre"))
		Expect(snaps[1].Description).To(Equal("zypp(zypper)"))
		Expect(snaps[1].Cleanup).To(Equal("number"))
		Expect(snaps[1].Date).To(Equal(time.Date(2025, 8, 1, 10, 30, 0, 0, time.UTC)))
		Expect(snaps[1].Path).To(Equal(snapshotsRoot + "/9/snapshot"))
	})
	It("warns and skips directories without parseable metadata", func() {
		snaps, err := snapper.List(s, snapshotsRoot)
		Expect(err).NotTo(HaveOccurred())
		Expect(snaps).To(HaveLen(3))
		Expect(buffer.String()).To(ContainSubstring("Skipping snapshot 7"))
		Expect(buffer.String()).To(ContainSubstring("Skipping snapshot 8"))
		Expect(buffer.String()).To(ContainSubstring("Skipping snapshot 11"))
	})
	It("fails on a missing snapshots directory", func() {
		_, err := snapper.List(s, "/mnt/@home/.snapshots")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("reading snapshots directory"))
	})
	It("computes snapshot paths", func() {
		Expect(snapper.SnapshotPath(snapshotsRoot, 42)).To(Equal("/mnt/@/.snapshots/42/snapshot"))
	})
})
