package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newID() ConnectionID { return ConnectionID(uuid.NewString()) }

func TestRegistry_Register_Then_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := newID()

	// Given a registered connection
	registry.Register(id, "alice")
	req.Equal(1, registry.Len())

	// When it is unregistered
	username, ok := registry.Unregister(id)

	// Then the prior username is returned and the entry is gone
	req.True(ok)
	req.Equal("alice", username)
	req.Zero(registry.Len())
	_, ok = registry.Username(id)
	req.False(ok)
}

func TestRegistry_Unregister_Unknown_Connection_Is_Absent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	username, ok := registry.Unregister(newID())

	req.False(ok)
	req.Empty(username)
}

func TestRegistry_Register_Twice_Last_Write_Wins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := newID()

	registry.Register(id, "alice")
	registry.Register(id, "alice2")

	req.Equal(1, registry.Len())
	username, ok := registry.Username(id)
	req.True(ok)
	req.Equal("alice2", username)
}

func TestRegistry_LookupByUsername(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second, other := newID(), newID(), newID()

	// Given alice connected twice and bob once
	registry.Register(first, "alice")
	registry.Register(other, "bob")
	registry.Register(second, "alice")

	// Then the lookup is stable and returns the earliest connection
	for i := 0; i < 10; i++ {
		id, ok := registry.LookupByUsername("alice")
		req.True(ok)
		req.Equal(first, id)
	}

	// When the earliest connection leaves, the other one is found
	registry.Unregister(first)
	id, ok := registry.LookupByUsername("alice")
	req.True(ok)
	req.Equal(second, id)

	// And an offline user is absent
	_, ok = registry.LookupByUsername("carol")
	req.False(ok)
}

func TestRegistry_SnapshotUsernames_Keeps_Duplicates(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Register(newID(), "alice")
	registry.Register(newID(), "alice")
	registry.Register(newID(), "bob")

	req.ElementsMatch([]string{"alice", "alice", "bob"}, registry.SnapshotUsernames())
}

func TestRegistry_Concurrent_Connect_Disconnect(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	const n = 200

	ids := make([]ConnectionID, n)
	for i := range ids {
		ids[i] = newID()
	}

	// When many connections register concurrently and half of them leave
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.Register(id, fmt.Sprintf("user-%d", i))
			if i%2 == 0 {
				registry.Unregister(id)
			}
		}()
	}
	wg.Wait()

	// Then only the connections still live are present
	req.Equal(n/2, registry.Len())
	for i, id := range ids {
		_, ok := registry.Username(id)
		req.Equal(i%2 != 0, ok)
	}
}
