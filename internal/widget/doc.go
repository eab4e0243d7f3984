// Package widget is the wishes widget: it owns the wish list and the
// pagination state, renders the current page into the host document's mount
// points and keeps the list fresh on a timer.
//
// Lifecycle:
//
//	Uninitialized -> Loading -> Ready   (first fetch succeeded)
//	Uninitialized -> Loading -> Error   (first fetch failed or was malformed)
//
// A refresh passes through Loading again. When it fails the previous
// fragments stay in place and the state returns to what it was; only the
// first load renders an error message.
package widget
