// Package pagination provides the page arithmetic behind the wishes widget.
//
// This package contains:
//   - Paginator: page slicing, total page count and clamping for a fixed page size
//   - Window: the run of numbered page links shown around the current page
//   - Meta: response metadata for a paginated result
//
// Pages are 1-based. An empty list still has one (empty) page.
package pagination
