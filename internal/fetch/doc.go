// Package fetch retrieves the wish list from the remote endpoint.
//
// Each call to Fetcher.Fetch generates a unique callback token, registers it
// in a Registry and requests the endpoint with that token. The response body
// is handed to Dispatch, which resolves the registry entry named by the
// script callback (JSONP) or, for a bare JSON body in the json transport, the
// requesting token itself. In the jsonp transport a bare JSON body fires
// nothing. Fetch then settles on exactly one outcome:
//
//   - the callback fired with a well-formed payload: Result{OK: true}
//   - the callback fired with a malformed payload: Result{OK: false}, nil error
//   - the load failed or no callback fired before the timeout: *FetchError
//
// The token is removed from the registry and the response body released on
// every path.
package fetch
