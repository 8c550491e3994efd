// Package spectra is the authenticated HTTP client of the Spectra backend.
//
// A Client performs JSON requests against a fixed base URL. When it holds a
// session token it sends it as a bearer token; when the backend rejects it
// (401) and a refresh token is available in the TokenStore, the client mints
// a new session token once and replays the request. Concurrent requests
// rejected with the same token share a single refresh.
//
// Every failure is returned as an *Error carrying the HTTP status (0 when the
// server could not be reached), a message and the raw JSON body:
//
//	var summary aurora.Summary
//	err := client.Get(ctx, "/portfolio/summary", nil, &summary)
//	switch spectra.KindOf(err) {
//	case spectra.KindAuthentication:
//		// login again
//	case spectra.KindValidation:
//		fields := err.(*spectra.Error).FieldErrors()
//	}
package spectra
