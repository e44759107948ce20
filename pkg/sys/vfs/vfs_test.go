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

package vfs_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	sysmock "github.com/suse/snapper-rollback/pkg/sys/mock"
	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

func TestVfsSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "vfs test suite")
}

var _ = Describe("FS", Label("vfs"), func() {
	var tfs vfs.FS
	var cleanup func()
	var err error

	BeforeEach(func() {
		tfs, cleanup, err = sysmock.TestFS(map[string]string{
			"/folder/file": "some content",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	It("checks file existence", func() {
		ok, err := vfs.Exists(tfs, "/folder/file")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = vfs.Exists(tfs, "/folder/missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("distinguishes directories from files", func() {
		ok, err := vfs.IsDir(tfs, "/folder")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = vfs.IsDir(tfs, "/folder/file")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		_, err = vfs.IsDir(tfs, "/folder/missing")
		Expect(err).To(HaveOccurred())
	})

	It("creates nested directories", func() {
		Expect(vfs.MkdirAll(tfs, "/some/nested/path", vfs.DirPerm)).To(Succeed())
		ok, err := vfs.IsDir(tfs, "/some/nested/path")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("MkdirAll is a noop on existing directories", func() {
		Expect(vfs.MkdirAll(tfs, "/folder", vfs.DirPerm)).To(Succeed())
	})

	It("MkdirAll fails over a regular file", func() {
		Expect(vfs.MkdirAll(tfs, "/folder/file/subdir", vfs.DirPerm)).NotTo(Succeed())
	})

	It("loads environment style files", func() {
		data := "NAME=\"openSUSE Tumbleweed\"\nID=opensuse-tumbleweed\n"
		Expect(tfs.WriteFile("/folder/os-release", []byte(data), vfs.FilePerm)).To(Succeed())

		envs, err := vfs.LoadEnvFile(tfs, "/folder/os-release")
		Expect(err).NotTo(HaveOccurred())
		Expect(envs["NAME"]).To(Equal("openSUSE Tumbleweed"))
		Expect(envs["ID"]).To(Equal("opensuse-tumbleweed"))
	})

	It("fails to load a missing environment file", func() {
		_, err := vfs.LoadEnvFile(tfs, "/folder/missing")
		Expect(err).To(HaveOccurred())
	})
})
