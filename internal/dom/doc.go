// Package dom defines the host surface the interaction engine runs against.
//
// The engine never owns the element tree - it only queries, observes, and
// labels elements through the interfaces in this package. Hosts provide a
// Document (queryable tree plus viewport geometry and a readiness signal)
// and a VisibilitySource (threshold-crossing notifications for observed
// elements). The in-memory reference implementation lives in
// internal/memdom and is what the simulator, harness, and tests run on.
//
// Geometry convention: Rect values returned by Element.Bounds are relative
// to the viewport, with the viewport's top-left corner at (0, 0). An
// element that has scrolled fully past the top of the viewport therefore
// has Bottom() <= 0; one not yet reached has Top >= the viewport height.
package dom
