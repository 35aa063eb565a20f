// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayloadSource is returned by [Payload.Scan] when the database
// column holds a type that cannot be represented as raw bytes.
var ErrInvalidPayloadSource = errors.New("unsupported payload source type")

var jsonNull = []byte("null")

// Payload is the opaque body of a synchronized record.
//
// The engine never looks inside a Payload: it is carried from the client to
// the record store and back byte-for-byte. It must be valid JSON on the wire
// because it is embedded into JSON documents, but its shape is owned by the
// caller. An empty Payload and a JSON null are both treated as "absent".
type Payload json.RawMessage

// IsEmpty reports whether p carries no data (nil, whitespace or JSON null).
func (p Payload) IsEmpty() bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

// Size returns the number of raw bytes held by p.
func (p Payload) Size() int {
	return len(p)
}

// Equal reports whether p and other hold byte-identical payloads.
// Two absent payloads are equal.
func (p Payload) Equal(other Payload) bool {
	if p.IsEmpty() || other.IsEmpty() {
		return p.IsEmpty() && other.IsEmpty()
	}
	return bytes.Equal(p, other)
}

// Clone returns a copy of p that does not share its backing array.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return append(Payload(nil), p...)
}

// MarshalJSON implements [json.Marshaler].
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return jsonNull, nil
	}
	return p, nil
}

// UnmarshalJSON implements [json.Unmarshaler]. A JSON null is kept as an
// absent payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if p == nil {
		return errors.New("models.Payload: UnmarshalJSON on nil pointer")
	}
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*p = nil
		return nil
	}
	*p = append((*p)[0:0], data...)
	return nil
}

// Value implements [driver.Valuer]. Absent payloads are stored as NULL.
func (p Payload) Value() (driver.Value, error) {
	if p.IsEmpty() {
		return nil, nil
	}
	return []byte(p), nil
}

// Scan implements [sql.Scanner].
func (p *Payload) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(Payload(nil), value...)
	case string:
		*p = Payload(value)
	default:
		return fmt.Errorf("%w: %T", ErrInvalidPayloadSource, src)
	}
	return nil
}
