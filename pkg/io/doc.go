// Package io provides JSON import and export for behavior trees.
//
// # JSON Format
//
// The format has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "1", "label": "Sequence", "kind": "Control"},
//	    {"id": "2", "label": "ComputePathToPose", "kind": "Action"}
//	  ],
//	  "edges": [
//	    {"from": "1", "to": "2"}
//	  ]
//	}
//
// Node "label" and "kind" are optional; "meta" may carry arbitrary values.
// Edges are parent -> child and must reference declared nodes. The tree must be
// acyclic; [ReadJSON] validates it before returning.
package io
