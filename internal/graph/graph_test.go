package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Zero(t, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Equal(t, 1, g.Len())
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a") // idempotent
	assert.Equal(t, 1, g.Len())

	g.AddNode("b")
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"a", "b"}, g.order)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		require.NoError(t, g.AddEdge("a", "b")) // b depends on a

		assert.Contains(t, g.nodes["b"].deps, "a")
		assert.Contains(t, g.nodes["a"].dependents, "b")
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		assert.ErrorIs(t, g.AddEdge("dne", "a"), ErrNodeNotFound)
		assert.ErrorIs(t, g.AddEdge("a", "dne"), ErrNodeNotFound)

		err := g.AddEdge("a", "a")
		var ce *CycleError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, []string{"a"}, ce.Members)
		assert.EqualError(t, err, "circular dependency: a -> a")
	})
}

func TestTopologicalSort(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		order, err := New().TopologicalSort()
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	t.Run("independent nodes keep insertion order", func(t *testing.T) {
		g := New()
		for _, id := range []string{"c", "a", "b"} {
			g.AddNode(id)
		}
		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, order)
	})

	t.Run("forward reference is placed first", func(t *testing.T) {
		// "batch" is declared before "n" but depends on it.
		g := New()
		g.AddNode("batch")
		g.AddNode("n")
		g.AddNode("gpu")
		require.NoError(t, g.AddEdge("n", "batch"))
		require.NoError(t, g.AddEdge("gpu", "batch"))

		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"n", "gpu", "batch"}, order)
	})

	t.Run("diamond", func(t *testing.T) {
		g := New()
		for _, id := range []string{"d", "b", "c", "a"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "d"))
		require.NoError(t, g.AddEdge("c", "d"))

		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, order)
	})
}

func TestTopologicalSort_Cycles(t *testing.T) {
	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // transitive edge
		require.NoError(t, g.AddEdge("c", "d"))
		_, err := g.TopologicalSort()
		assert.NoError(t, err)
	})

	t.Run("simple direct cycle names both members", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		_, err := g.TopologicalSort()
		require.ErrorIs(t, err, ErrCircularDependency)
		var ce *CycleError
		require.ErrorAs(t, err, &ce)
		assert.ElementsMatch(t, []string{"a", "b"}, ce.Members)
	})

	t.Run("longer cycle names every member", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("c", "d"))
		require.NoError(t, g.AddEdge("d", "a"))

		_, err := g.TopologicalSort()
		var ce *CycleError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, []string{"a", "d", "c", "b"}, ce.Members)
		assert.EqualError(t, err, "circular dependency: a -> d -> c -> b -> a")
	})

	t.Run("cycle in a disjoint component excludes outsiders", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))

		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y"))

		_, err := g.TopologicalSort()
		var ce *CycleError
		require.ErrorAs(t, err, &ce)
		assert.ElementsMatch(t, []string{"y", "z"}, ce.Members)
	})
}
