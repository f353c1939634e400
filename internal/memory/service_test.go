// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"open-swarm/pkg/types"
)

func TestService_Write_MintsIDAndNamespace(t *testing.T) {
	svc := NewService(NewInMemoryStore(false, ""))
	frag := svc.Write(WriteInput{
		Content:   "remember this",
		Type:      types.FragmentSemantic,
		ProjectID: "proj",
		AgentID:   "agent",
	})

	assert.NotEmpty(t, frag.ID)
	assert.Equal(t, "proj:agent", frag.Namespace)
	assert.Equal(t, 1.0, frag.Relevance)
}

func TestService_Write_PreservesCreatedAtOnUpdate(t *testing.T) {
	svc := NewService(NewInMemoryStore(false, ""))
	first := svc.Write(WriteInput{ID: "f1", Content: "v1", ProjectID: "p", AgentID: "a"})
	second := svc.Write(WriteInput{ID: "f1", Content: "v2", ProjectID: "p", AgentID: "a"})

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "v2", second.Content)
}

func TestService_Read_IncrementsAccessCount(t *testing.T) {
	svc := NewService(NewInMemoryStore(false, ""))
	frag := svc.Write(WriteInput{ID: "f1", Content: "v1", ProjectID: "p", AgentID: "a"})
	assert.Equal(t, 0, frag.AccessCount)

	got, ok := svc.Read("f1")
	require.True(t, ok)
	assert.Equal(t, 1, got.AccessCount)

	got2, ok := svc.Read("f1")
	require.True(t, ok)
	assert.Equal(t, 2, got2.AccessCount)
}

func TestService_BulkWriteBulkRead(t *testing.T) {
	svc := NewService(NewInMemoryStore(false, ""))
	written := svc.BulkWrite([]WriteInput{
		{ID: "a", Content: "a", ProjectID: "p", AgentID: "x"},
		{ID: "b", Content: "b", ProjectID: "p", AgentID: "x"},
	})
	require.Len(t, written, 2)

	got := svc.BulkRead([]string{"a", "b"})
	assert.Len(t, got, 2)
}

func TestService_Query_ScopesToNamespace(t *testing.T) {
	svc := NewService(NewInMemoryStore(false, ""))
	svc.Write(WriteInput{ID: "a", Content: "a", ProjectID: "p1", AgentID: "x"})
	svc.Write(WriteInput{ID: "b", Content: "b", ProjectID: "p2", AgentID: "x"})

	results := svc.Query("p1", "x", Filter{})
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestService_SearchByVector_ScopesToNamespaceAndBumpsAccess(t *testing.T) {
	svc := NewService(NewInMemoryStore(false, ""))
	svc.Write(WriteInput{ID: "a", Content: "a", ProjectID: "p", AgentID: "x", Embedding: []float64{1, 0}, Relevance: 1})
	svc.Write(WriteInput{ID: "b", Content: "b", ProjectID: "other", AgentID: "x", Embedding: []float64{1, 0}, Relevance: 1})

	th := 0.1
	results, err := svc.SearchByVector("p", "x", []float64{1, 0}, 10, &th)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Fragment.ID)
	assert.Equal(t, 1, results[0].Fragment.AccessCount)
}

func TestSerializeDeserializeFragment_RoundTrip(t *testing.T) {
	original := types.MemoryFragment{ID: "a", Content: "hello", Type: types.FragmentEpisodic}

	data, err := SerializeFragment(original)
	require.NoError(t, err)

	got, err := DeserializeFragment(data)
	require.NoError(t, err)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.Content, got.Content)
}

func TestDeserializeFragment_ChecksumTamperFails(t *testing.T) {
	data, err := SerializeFragment(types.MemoryFragment{ID: "a", Content: "hello"})
	require.NoError(t, err)

	tampered := append([]byte{}, data...)
	for i := range tampered {
		if tampered[i] == 'h' {
			tampered[i] = 'H'
			break
		}
	}

	_, err = DeserializeFragment(tampered)
	assert.Error(t, err)
}

func TestExportAllImportAll_ServiceRoundTrip(t *testing.T) {
	svc := NewService(NewInMemoryStore(false, ""))
	svc.Write(WriteInput{ID: "a", Content: "a", ProjectID: "p", AgentID: "x"})
	svc.Write(WriteInput{ID: "b", Content: "b", ProjectID: "p", AgentID: "x"})

	data, err := svc.ExportAll()
	require.NoError(t, err)

	svc2 := NewService(NewInMemoryStore(false, ""))
	require.NoError(t, svc2.ImportAll(data))

	got, ok := svc2.Read("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Content)
}
