// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	data, err := Marshal(3, samplePayload{Name: "fragment", Count: 7})
	require.NoError(t, err)

	var out samplePayload
	err = Unmarshal(data, 3, &out)
	require.NoError(t, err)
	assert.Equal(t, samplePayload{Name: "fragment", Count: 7}, out)
}

func TestUnmarshal_VersionMismatch(t *testing.T) {
	data, err := Marshal(1, samplePayload{Name: "x"})
	require.NoError(t, err)

	var out samplePayload
	err = Unmarshal(data, 2, &out)
	require.Error(t, err)
}

func TestUnmarshal_ChecksumTamper(t *testing.T) {
	env, err := Encode(1, samplePayload{Name: "x", Count: 1})
	require.NoError(t, err)

	env.Payload = []byte(`{"name":"tampered","count":999}`)

	var out samplePayload
	err = Decode(env, 1, &out)
	require.Error(t, err)
}
