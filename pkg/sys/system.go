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

package sys

import (
	"context"

	"github.com/suse/snapper-rollback/pkg/log"
	"github.com/suse/snapper-rollback/pkg/sys/mounter"
	"github.com/suse/snapper-rollback/pkg/sys/mounter/k8smounter"
	"github.com/suse/snapper-rollback/pkg/sys/runner"
	"github.com/suse/snapper-rollback/pkg/sys/vfs"
)

type Runner interface {
	Run(cmd string, args ...string) ([]byte, error)
	RunContext(ctx context.Context, cmd string, args ...string) ([]byte, error)
}

// System aggregates the host facilities a command needs: filesystem access,
// mount table handling, external process execution and logging. Every
// capability is swappable, tests replace them with the doubles from
// pkg/sys/mock.
type System struct {
	logger  log.Logger
	fs      vfs.FS
	mounter mounter.Interface
	runner  Runner
}

type SystemOpts func(s *System) error

func WithFS(fs vfs.FS) SystemOpts {
	return func(s *System) error {
		s.fs = fs
		return nil
	}
}

func WithLogger(logger log.Logger) SystemOpts {
	return func(s *System) error {
		s.logger = logger
		return nil
	}
}

func WithMounter(mounter mounter.Interface) SystemOpts {
	return func(s *System) error {
		s.mounter = mounter
		return nil
	}
}

func WithRunner(runner Runner) SystemOpts {
	return func(s *System) error {
		s.runner = runner
		return nil
	}
}

func NewSystem(opts ...SystemOpts) (*System, error) {
	sysObj := &System{
		fs:      vfs.OSFS(),
		logger:  log.New(),
		mounter: k8smounter.NewMounter(mounter.Binary),
	}

	for _, o := range opts {
		err := o(sysObj)
		if err != nil {
			return nil, err
		}
	}

	// Defer the runner creation in case the caller set a custom logger
	if sysObj.runner == nil {
		sysObj.runner = runner.NewRunner(runner.WithLogger(sysObj.logger))
	}

	return sysObj, nil
}

func (s System) FS() vfs.FS {
	return s.fs
}

func (s System) Mounter() mounter.Interface {
	return s.mounter
}

func (s System) Runner() Runner {
	return s.runner
}

func (s System) Logger() log.Logger {
	return s.logger
}
