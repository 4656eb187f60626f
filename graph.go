package graphflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Branch routes execution to a target node when its named predicate
// evaluates to true. Branches on an edge are evaluated in declared order
// and the first match wins.
type Branch struct {
	Predicate string `json:"predicate" yaml:"predicate"`
	Target    string `json:"target" yaml:"target"`
}

// Edge is the outgoing routing rule for a node: an ordered list of
// conditional branches plus an optional fallback. An empty DefaultNext
// means the run completes when no branch matches.
type Edge struct {
	DefaultNext string    `json:"default_next,omitempty" yaml:"default_next,omitempty"`
	Branches    []*Branch `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// Graph describes a directed workflow as a set of named nodes and their
// outgoing edges. Nodes absent from the Edges map have no outgoing edge,
// which is the normal way for a workflow to finish.
//
// A Graph is plain data. Structural checks live in ValidateGraph and are
// the responsibility of whoever accepts a graph from the outside world;
// the execution engine assumes graphs it receives are already valid.
type Graph struct {
	GraphID   string           `json:"graph_id" yaml:"graph_id"`
	StartNode string           `json:"start_node" yaml:"start_node"`
	Nodes     []string         `json:"nodes" yaml:"nodes"`
	Edges     map[string]*Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Edge returns the outgoing edge for the given node, if one is configured.
func (g *Graph) Edge(node string) (*Edge, bool) {
	edge, ok := g.Edges[node]
	return edge, ok
}

// ValidateGraph confirms a graph is structurally sound: node names are
// unique, the start node is a member of the node set, and every edge key
// and edge target refers to a known node.
func ValidateGraph(g *Graph) error {
	if g == nil {
		return fmt.Errorf("graph is required")
	}
	if len(g.Nodes) == 0 {
		return fmt.Errorf("graph must have at least one node")
	}
	nodes := make(map[string]bool, len(g.Nodes))
	for _, name := range g.Nodes {
		if name == "" {
			return fmt.Errorf("node name cannot be empty")
		}
		if nodes[name] {
			return fmt.Errorf("duplicate node name %q", name)
		}
		nodes[name] = true
	}
	if g.StartNode == "" {
		return fmt.Errorf("graph start node required")
	}
	if !nodes[g.StartNode] {
		return fmt.Errorf("start node %q not found in nodes", g.StartNode)
	}
	for node, edge := range g.Edges {
		if !nodes[node] {
			return fmt.Errorf("edge for unknown node %q", node)
		}
		if edge == nil {
			return fmt.Errorf("edge for node %q is empty", node)
		}
		if edge.DefaultNext != "" && !nodes[edge.DefaultNext] {
			return fmt.Errorf("default next %q for node %q not found in nodes", edge.DefaultNext, node)
		}
		for _, branch := range edge.Branches {
			if branch.Predicate == "" {
				return fmt.Errorf("branch on node %q missing predicate name", node)
			}
			if !nodes[branch.Target] {
				return fmt.Errorf("branch target %q for node %q not found in nodes", branch.Target, node)
			}
		}
	}
	return nil
}

// LoadFile loads and validates a graph from a YAML file.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	return LoadString(string(data))
}

// LoadString loads and validates a graph from a YAML string.
func LoadString(data string) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal([]byte(data), &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	if err := ValidateGraph(&g); err != nil {
		return nil, fmt.Errorf("graph validation failed: %w", err)
	}
	return &g, nil
}
