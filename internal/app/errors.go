// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import "errors"

var (
	ErrStorageSetup   = errors.New("error setting up storage")
	ErrServicesSetup  = errors.New("error setting up services")
	ErrTransportSetup = errors.New("error setting up transports")
)
