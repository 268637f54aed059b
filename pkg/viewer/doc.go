// Package viewer owns the displayed drawing and keeps it in sync with the
// collapse state, the color feed and the layout server.
//
// A [Controller] holds the render state: the current surface, the graph
// index built over it and the dimensions of every collapsed overlay. The
// state is created by the first [Controller.Attach] and replaced wholesale
// by [Controller.ReplaceSurface] after a relayout. All mutation goes
// through the controller's mutex, so toggles, color updates and surface
// swaps apply in the order they arrive.
//
// Toggle flow:
//
//	Toggle(id) -> collapse.Store -> overlay build/teardown -> canvas bounds
//	           -> visibility -> listeners -> debounced Relayout
//
// Relayout flow:
//
//	Relayout -> POST dims -> ReplaceSurface -> attachments -> index
//	         -> overlays rebuilt -> visibility -> colors reapplied
//
// A failed relayout leaves the previous surface and overlays untouched.
//
// [Handler] serves the current drawing over HTTP.
package viewer
