// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig mirrors [StructuredConfig] for JSON and YAML files.
// Durations are accepted as strings ("30s") or integer nanoseconds.
type StructuredFileConfig struct {
	App struct {
		Version      string `json:"version" yaml:"version"`
		TokenSignKey string `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer  string `json:"token_issuer" yaml:"token_issuer"`
		HashKey      string `json:"hash_key" yaml:"hash_key"`
		LogFile      string `json:"log_file" yaml:"log_file"`
		LogLevel     string `json:"log_level" yaml:"log_level"`
	} `json:"app,omitempty" yaml:"app,omitempty"`

	Storage struct {
		DB struct {
			Driver       string `json:"driver" yaml:"driver"`
			DSN          string `json:"dsn" yaml:"dsn"`
			MaxOpenConns int    `json:"max_open_conns" yaml:"max_open_conns"`
			MaxIdleConns int    `json:"max_idle_conns" yaml:"max_idle_conns"`
		} `json:"db,omitempty" yaml:"db,omitempty"`
	} `json:"storage,omitempty" yaml:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address" yaml:"http_address"`
		GRPCAddress     string   `json:"grpc_address" yaml:"grpc_address"`
		RequestTimeout  Duration `json:"request_timeout" yaml:"request_timeout"`
		ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	} `json:"server,omitempty" yaml:"server,omitempty"`

	Sync struct {
		MaxBatchItems       int      `json:"max_batch_items" yaml:"max_batch_items"`
		MaxPayloadBytes     int      `json:"max_payload_bytes" yaml:"max_payload_bytes"`
		TxMaxRetries        int      `json:"tx_max_retries" yaml:"tx_max_retries"`
		TxRetryBackoff      Duration `json:"tx_retry_backoff" yaml:"tx_retry_backoff"`
		ResolveMaxAttempts  int      `json:"resolve_max_attempts" yaml:"resolve_max_attempts"`
		ResolveRetryBackoff Duration `json:"resolve_retry_backoff" yaml:"resolve_retry_backoff"`
		StatusCursorOverlap Duration `json:"status_cursor_overlap" yaml:"status_cursor_overlap"`
	} `json:"sync,omitempty" yaml:"sync,omitempty"`

	Workers struct {
		DrainInterval  Duration `json:"drain_interval" yaml:"drain_interval"`
		DrainBatchSize int      `json:"drain_batch_size" yaml:"drain_batch_size"`
	} `json:"workers,omitempty" yaml:"workers,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		Token          string   `json:"token" yaml:"token"`
		ClientID       string   `json:"client_id" yaml:"client_id"`
		StateFile      string   `json:"state_file" yaml:"state_file"`
	} `json:"adapter,omitempty" yaml:"adapter,omitempty"`
}

// parseFile reads a JSON or YAML config file. The format is chosen by the
// file extension; ".yaml" and ".yml" are decoded as YAML, everything else as
// JSON.
func parseFile(path string) (*StructuredConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return fileCfg.toStructured(), nil
}

func (f *StructuredFileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Version:      f.App.Version,
			TokenSignKey: f.App.TokenSignKey,
			TokenIssuer:  f.App.TokenIssuer,
			HashKey:      f.App.HashKey,
			LogFile:      f.App.LogFile,
			LogLevel:     f.App.LogLevel,
		},
		Storage: Storage{
			DB: DB{
				Driver:       f.Storage.DB.Driver,
				DSN:          f.Storage.DB.DSN,
				MaxOpenConns: f.Storage.DB.MaxOpenConns,
				MaxIdleConns: f.Storage.DB.MaxIdleConns,
			},
		},
		Server: Server{
			HTTPAddress:     f.Server.HTTPAddress,
			GRPCAddress:     f.Server.GRPCAddress,
			RequestTimeout:  time.Duration(f.Server.RequestTimeout),
			ShutdownTimeout: time.Duration(f.Server.ShutdownTimeout),
		},
		Sync: Sync{
			MaxBatchItems:       f.Sync.MaxBatchItems,
			MaxPayloadBytes:     f.Sync.MaxPayloadBytes,
			TxMaxRetries:        f.Sync.TxMaxRetries,
			TxRetryBackoff:      time.Duration(f.Sync.TxRetryBackoff),
			ResolveMaxAttempts:  f.Sync.ResolveMaxAttempts,
			ResolveRetryBackoff: time.Duration(f.Sync.ResolveRetryBackoff),
			StatusCursorOverlap: time.Duration(f.Sync.StatusCursorOverlap),
		},
		Workers: Workers{
			DrainInterval:  time.Duration(f.Workers.DrainInterval),
			DrainBatchSize: f.Workers.DrainBatchSize,
		},
		Adapter: Adapter{
			HTTPAddress:    f.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(f.Adapter.RequestTimeout),
			Token:          f.Adapter.Token,
			ClientID:       f.Adapter.ClientID,
			StateFile:      f.Adapter.StateFile,
		},
	}
}

// Duration is a wrapper around time.Duration that supports JSON and YAML
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	tmp, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}
