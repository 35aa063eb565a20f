// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server wires and runs the application's transport servers.
//
// It provides orchestration for HTTP and gRPC server lifecycles, including
// startup, context-driven shutdown and graceful draining of all enabled
// transports. The gRPC server also exposes the standard health service.
package server
