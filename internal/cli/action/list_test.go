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

package action_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/urfave/cli/v2"

	"github.com/suse/snapper-rollback/internal/cli/action"
	"github.com/suse/snapper-rollback/internal/cli/cmd"
	"github.com/suse/snapper-rollback/pkg/config"
	"github.com/suse/snapper-rollback/pkg/log"
	"github.com/suse/snapper-rollback/pkg/sys"
	sysmock "github.com/suse/snapper-rollback/pkg/sys/mock"
	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

const info42 = `<?xml version="1.0"?>
<snapshot>
  <type>single</type>
  <num>42</num>
  <date>2025-08-01 10:30:00</date>
  <description>before kernel update</description>
  <cleanup>number</cleanup>
</snapshot>
`

const info43 = `<?xml version="1.0"?>
<snapshot>
  <type>single</type>
  <num>43</num>
  <date>2025-08-02 07:12:41</date>
  <description>after kernel update</description>
  <cleanup>number</cleanup>
</snapshot>
`

var _ = Describe("List action", Label("list"), func() {
	var s *sys.System
	var tfs vfs.FS
	var cleanup func()
	var err error
	var app *cli.App
	var buffer *bytes.Buffer
	var out *bytes.Buffer

	BeforeEach(func() {
		cmd.RootArgs = cmd.RootFlags{Config: config.DefaultPath, Section: config.DefaultSection}
		buffer = &bytes.Buffer{}
		out = &bytes.Buffer{}
		tfs, cleanup, err = sysmock.TestFS(map[string]string{
			"/etc/snapper-rollback.conf":  rollbackConfig,
			"/mnt/@snapshots/42/info.xml": info42,
			"/mnt/@snapshots/43/info.xml": info43,
		})
		Expect(err).NotTo(HaveOccurred())
		s, err = sys.NewSystem(
			sys.WithFS(tfs), sys.WithLogger(log.New(log.WithBuffer(buffer))),
		)
		Expect(err).NotTo(HaveOccurred())
		app = cli.NewApp()
		app.Name = "snapper-rollback"
		app.Writer = out
		app.Metadata = map[string]any{"system": s}
	})

	AfterEach(func() {
		cleanup()
	})
	It("fails if no sys.System instance is in metadata", func() {
		app.Metadata["system"] = nil
		err = action.List(newContext(app))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("error setting up initial configuration"))
	})
	It("prints the snapshot table", func() {
		Expect(action.List(newContext(app))).To(Succeed())
		Expect(out.String()).To(ContainSubstring("#"))
		Expect(out.String()).To(ContainSubstring("DESCRIPTION"))
		Expect(out.String()).To(ContainSubstring("42"))
		Expect(out.String()).To(ContainSubstring("before kernel update"))
		Expect(out.String()).To(ContainSubstring("2025-08-02 07:12:41"))
	})
	It("maps a missing config section to an exit code", func() {
		cmd.RootArgs.Section = "home"
		err = action.List(newContext(app))
		var exitErr cli.ExitCoder
		Expect(errors.As(err, &exitErr)).To(BeTrue())
		Expect(exitErr.ExitCode()).To(Equal(1))
		Expect(buffer.String()).To(ContainSubstring("Missing config section: home"))
	})
	It("fails when the snapshots directory is not accessible", func() {
		Expect(tfs.RemoveAll("/mnt/@snapshots")).To(Succeed())
		err = action.List(newContext(app))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("reading snapshots directory"))
	})
})
