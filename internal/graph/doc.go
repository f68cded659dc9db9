// Package graph provides a small directed graph used to order parameters by
// their references.
//
// An edge from A to B means B depends on A: A must be evaluated first.
// TopologicalSort returns every node with its dependencies ahead of it and
// breaks ties by insertion order, so the same input always yields the same
// order. When no such order exists it returns a *CycleError naming the
// members of one cycle in the order the references run.
package graph
