// Package tui is the terminal browser for the wishes widget.
//
// BrowseModel drives a widget.Controller from the keyboard: the arrow keys
// (or h/l) move between pages, 1-9 jump to a page, r refreshes and q quits.
// The list is refreshed on the widget's interval while the program runs.
// RenderText is the plain rendering shared with `wishboard show --format text`.
package tui
