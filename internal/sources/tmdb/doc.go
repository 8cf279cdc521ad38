// Package tmdb provides a lightweight client for The Movie Database API and
// the movie/tv source adapter built on it.
//
// Requests travel through the shared gateway, so pacing, breaker state and
// failure classification match every other provider. The adapter searches by
// title, picks the best title match, then fetches details with credits to
// discover the director (movies) or creator (tv).
package tmdb
