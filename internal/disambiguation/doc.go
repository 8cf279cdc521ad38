// Package disambiguation decides who created a title when a search returns
// several distinct creators.
//
// The engine searches the domain's primary searcher, drops noise (titles that
// do not match, derivative works such as summaries and study guides,
// uncredited results), buckets the rest by surname key and ranks the buckets
// by summed popularity. A Policy then either auto-resolves to the top creator
// or returns every ranked creator with NeedsClarification set so a human can
// choose.
package disambiguation
