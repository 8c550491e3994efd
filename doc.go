// Package aurora holds the domain types of the Aurora portfolio tracker.
//
// Aurora is a thin client: every figure it shows (valuation, profit and loss,
// allocation) is computed by the Spectra backend and only requested, cached
// and rendered here. The packages are organized as follows:
//   - aurora: assets, transactions, portfolio summaries, prices and users as
//     exchanged with the backend, plus their client-side form validation.
//   - spectra: the authenticated HTTP client with token storage and refresh.
//   - query: a small query cache with stale times and invalidation.
//   - dashboard: the typed, cached data hooks built on spectra and query.
//   - session: the authentication state and the route guard.
//   - renderer: markdown views of the backend resources.
//
// This package serves as the foundation for the `aurora` command-line tool.
package aurora
