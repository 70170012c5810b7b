// Package memdom is the in-memory reference implementation of the dom
// host surface.
//
// It backs the simulator CLI, the scenario harness, and package tests.
// The document is a plain node tree with document-space boxes and a
// scripted scroll position; visibility watchers derive threshold
// crossings from scroll changes, mirroring how a real host would drive
// an intersection watcher.
//
// Selector language: a single compound simple selector of the form
//
//	[tag][#id][.label ...][[attr] ...][[attr=value] ...]
//
// e.g. "div.hero", "#cta", ".card[data-group=a]". Combinators are not
// supported; subtree scoping is expressed through QueryWithin.
package memdom
