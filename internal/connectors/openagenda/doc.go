// Package openagenda fetches events from the OpenAgenda v2 API.
//
// Events are listed page by page with the cursor the API returns in
// "after"; the loop ends on an empty page or a null cursor. Requests are
// paced by a token bucket and a 429 response is retried once its
// Retry-After delay has elapsed.
package openagenda
