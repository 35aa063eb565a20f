// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppBuildInfo(t *testing.T) {
	assert.Equal(t, AppBuildInfo{BuildVersion: "1.0.0", BuildDate: "N/A", BuildCommit: "abc"},
		NewAppBuildInfo("1.0.0", "", "abc"))
	assert.Equal(t, AppBuildInfo{BuildVersion: "N/A", BuildDate: "N/A", BuildCommit: "N/A"},
		NewAppBuildInfo("", "", ""))
}
