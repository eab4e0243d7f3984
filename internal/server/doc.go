// Package server hosts the wishes widget over HTTP.
//
// The server owns a widget.Controller rendering into an in-process document.
// GET / serves the host page with the current fragments; the pagination links
// emitted by the renderer point at the navigation routes, which move the
// widget and redirect back to the wishes section. Clients that ask for JSON
// get the fragments back instead, so a page script can swap them in place.
package server
