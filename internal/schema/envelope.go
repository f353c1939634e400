// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package schema wraps persisted state in a versioned, checksummed
// envelope. No library in the dependency corpus addresses this narrow
// concern (a JSON payload tagged with a schema version and a tamper-evident
// checksum), so this package is built directly on encoding/json and
// crypto/sha256 rather than a third-party serialization library.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"open-swarm/internal/orcherrors"
)

// Envelope wraps a persisted payload with a schema version and a checksum
// over the encoded payload bytes.
type Envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Checksum      string          `json:"checksum"`
	Payload       json.RawMessage `json:"payload"`
}

// Encode marshals payload, computes its checksum, and wraps it in an
// Envelope at the given schema version.
func Encode(version int, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, orcherrors.Wrap(orcherrors.PersistenceFault, "schema", "", "marshal payload", err)
	}
	return Envelope{
		SchemaVersion: version,
		Checksum:      checksum(raw),
		Payload:       raw,
	}, nil
}

// Decode verifies an Envelope's checksum and schema version, then unmarshals
// its payload into out. expectedVersion must match exactly; callers needing
// migration across versions should branch on Envelope.SchemaVersion before
// calling Decode.
func Decode(env Envelope, expectedVersion int, out any) error {
	if env.SchemaVersion != expectedVersion {
		return orcherrors.New(orcherrors.SchemaMismatch, "schema", "",
			"schema version mismatch: got "+strconv.Itoa(env.SchemaVersion)+" want "+strconv.Itoa(expectedVersion))
	}
	if checksum(env.Payload) != env.Checksum {
		return orcherrors.New(orcherrors.SchemaMismatch, "schema", "", "checksum mismatch")
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return orcherrors.Wrap(orcherrors.PersistenceFault, "schema", "", "unmarshal payload", err)
	}
	return nil
}

// Marshal is a convenience that encodes an envelope and serializes it to
// bytes in one step, for writers that persist the envelope directly to disk.
func Marshal(version int, payload any) ([]byte, error) {
	env, err := Encode(version, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// Unmarshal is the inverse of Marshal: parse the envelope bytes, then decode
// its payload into out at expectedVersion.
func Unmarshal(data []byte, expectedVersion int, out any) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return orcherrors.Wrap(orcherrors.PersistenceFault, "schema", "", "unmarshal envelope", err)
	}
	return Decode(env, expectedVersion, out)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
