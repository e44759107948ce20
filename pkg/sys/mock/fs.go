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

package mock

import (
	"fmt"

	gvfs "github.com/twpayne/go-vfs/v4"
	"github.com/twpayne/go-vfs/v4/vfst"

	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

// TestFS creates a throwaway filesystem prepopulated with the given files,
// keys are absolute paths and values the file content. Missing parent
// directories are created on the fly. The returned function cleans the
// filesystem up.
func TestFS(files map[string]string) (vfs.FS, func(), error) {
	root := map[string]any{}
	for path, content := range files {
		root[path] = content
	}
	return vfst.NewTestFS(root)
}

// ReadOnlyTestFS wraps the given test filesystem so that any mutating call
// errors out with a permission error. Handy to prove a code path does not
// write at all.
func ReadOnlyTestFS(fs vfs.FS) (vfs.FS, error) {
	fullFS, ok := fs.(gvfs.FS)
	if !ok {
		return nil, fmt.Errorf("the given filesystem can't be wrapped to read-only")
	}
	return gvfs.NewReadOnlyFS(fullFS), nil
}
