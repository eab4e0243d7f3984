// Package render produces the widget's HTML fragments: the wish cards of the
// current page, the empty, loading and error placeholders, and the
// pagination controls.
//
// All user-supplied text goes through html/template's contextual escaping.
// Each fragment is meant to replace a mount point's contents in full.
package render
