// Package dag provides the behavior-tree model served by the btlive layout
// server.
//
// # Overview
//
// A behavior tree is drawn as a directed graph: control nodes (sequence,
// fallback, decorator) point at the nodes they tick. The layout server turns
// this model into DOT, lets graphviz position it, and hands the resulting SVG
// to viewers. Viewers never see this package; they rebuild adjacency from the
// SVG edge titles (see package index).
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]. Nodes must have unique, non-empty IDs and edges must connect
// existing nodes:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "1", Label: "Sequence"})
//	g.AddNode(dag.Node{ID: "2", Label: "GoToPose"})
//	g.AddEdge(dag.Edge{From: "1", To: "2"})
//
// [DAG.Nodes] and [DAG.Edges] return elements in insertion order so rendered
// drawings are stable across relayouts. Use [DAG.Validate] before rendering.
//
// # Metadata
//
// Nodes and the graph carry arbitrary [Metadata]. The renderer reads the
// "kind" key to pick a node shape.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The server builds the graph
// once at startup and only reads it afterwards.
package dag
