// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/go-resty/resty/v2"
)

// hashHeader carries the hex HMAC-SHA256 of a request body.
const hashHeader = "HashSHA256"

type httpSyncAdapter struct {
	client *utils.HTTPClient

	hashKey string

	logger *logger.Logger
}

// NewHTTPSyncAdapter constructs the HTTP implementation of [SyncAdapter].
// It normalises the base URL from adapterCfg.HTTPAddress and, when hashKey
// is set, signs every request body with the HashSHA256 header.
func NewHTTPSyncAdapter(adapterCfg config.Adapter, hashKey string, logger *logger.Logger) (SyncAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	if hashKey != "" {
		utils.InitHasherPool(hashKey)
	}

	logger.Debug().Str("base_url", baseURL).Bool("signed", hashKey != "").Msg("http sync adapter created")

	return &httpSyncAdapter{
		client:  utils.NewSyncHTTPClient(baseURL, strings.TrimSpace(adapterCfg.Token), adapterCfg.RequestTimeout),
		hashKey: hashKey,
		logger:  logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpSyncAdapter) QueueSync(ctx context.Context, request models.NewBatchRequest) (models.SyncBatch, error) {
	var batch models.SyncBatch

	req, err := h.signedRequest(ctx, request)
	if err != nil {
		return batch, err
	}

	resp, err := req.SetResult(&batch).Post("/api/sync/queue")
	if err != nil {
		return batch, fmt.Errorf("queue sync request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncBatch{}, err
	}

	return batch, nil
}

func (h *httpSyncAdapter) Sync(ctx context.Context, request models.NewBatchRequest) (models.ProcessResult, error) {
	req, err := h.signedRequest(ctx, request)
	if err != nil {
		return models.ProcessResult{}, err
	}

	resp, err := req.Post("/api/sync")
	if err != nil {
		return models.ProcessResult{}, fmt.Errorf("sync request: %w", err)
	}

	return decodeProcessResult(resp)
}

func (h *httpSyncAdapter) ProcessBatch(ctx context.Context, batchID string) (models.ProcessResult, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("batchID", batchID).
		Post("/api/sync/batches/{batchID}/process")
	if err != nil {
		return models.ProcessResult{}, fmt.Errorf("process batch request: %w", err)
	}

	return decodeProcessResult(resp)
}

func (h *httpSyncAdapter) GetBatch(ctx context.Context, batchID string) (models.SyncBatch, error) {
	var batch models.SyncBatch

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("batchID", batchID).
		SetResult(&batch).
		Get("/api/sync/batches/{batchID}")
	if err != nil {
		return batch, fmt.Errorf("get batch request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncBatch{}, err
	}

	return batch, nil
}

func (h *httpSyncAdapter) GetConflicts(ctx context.Context) ([]models.Conflict, error) {
	var conflicts []models.Conflict

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&conflicts).
		Get("/api/sync/conflicts")
	if err != nil {
		return nil, fmt.Errorf("get conflicts request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return conflicts, nil
}

func (h *httpSyncAdapter) ResolveConflict(ctx context.Context, conflictID string, request models.ResolveRequest) error {
	req, err := h.signedRequest(ctx, request)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("conflictID", conflictID).
		Post("/api/sync/conflicts/{conflictID}/resolve")
	if err != nil {
		return fmt.Errorf("resolve conflict request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpSyncAdapter) GetSyncStatus(ctx context.Context, deviceID string, since *time.Time) (models.SyncStatus, error) {
	var status models.SyncStatus

	req := h.client.R().
		SetContext(ctx).
		SetQueryParam("device_id", deviceID).
		SetResult(&status)
	if since != nil {
		req.SetQueryParam("since", since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := req.Get("/api/sync/status")
	if err != nil {
		return status, fmt.Errorf("get sync status request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncStatus{}, err
	}

	return status, nil
}

func (h *httpSyncAdapter) GetServerInfo(ctx context.Context) (models.AppInfo, error) {
	var info models.AppInfo

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&info).
		Get("/api/version/info")
	if err != nil {
		return info, fmt.Errorf("get server info request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AppInfo{}, err
	}

	return info, nil
}

// signedRequest marshals body once, so the HashSHA256 header covers exactly
// the bytes that are sent.
func (h *httpSyncAdapter) signedRequest(ctx context.Context, body any) (*resty.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req := h.client.R().
		SetContext(ctx).
		SetBody(payload)
	if h.hashKey != "" {
		req.SetHeader(hashHeader, hex.EncodeToString(utils.Hash(payload)))
	}

	return req, nil
}

// decodeProcessResult reads a processing result. The server answers a
// failed batch with an error status and the result in the body.
func decodeProcessResult(resp *resty.Response) (models.ProcessResult, error) {
	var result models.ProcessResult

	if mapped := mapHTTPError(resp); mapped != nil {
		if resp.StatusCode() >= http.StatusInternalServerError &&
			json.Unmarshal(resp.Body(), &result) == nil &&
			result.Status == models.BatchStatusFailed {
			return result, fmt.Errorf("%w: %w", ErrBatchFailed, mapped)
		}
		return models.ProcessResult{}, mapped
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return models.ProcessResult{}, fmt.Errorf("decode process result: %w", err)
	}

	return result, nil
}
