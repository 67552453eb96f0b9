// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

//go:build !linux

package procfs

import "errors"

func blockDeviceSize(path string) (int64, error) {
	return 0, errors.New("block device size is only available on linux")
}
