// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http serves the sync API over HTTP/JSON.
//
// Routes cover batch intake and processing, conflict listing and resolution,
// and the sync status pull. Every /api/sync route requires a bearer token.
// Requests carrying a body are also checked against their HashSHA256 header
// when a hash key is configured.
package http
