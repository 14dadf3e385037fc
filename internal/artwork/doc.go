// Package artwork turns raw artwork references from the content API into
// fetchable URLs and small, cache-resident image bytes.
//
// Resolve normalizes a reference against the stored backend base URL. FetchBytes
// is cache-through: a hit returns immediately, a miss performs a bounded
// download, recompresses to at most MaxDimension pixels on the long edge, and
// stores the result in a byte-budgeted LRU Cache. Every failure is logged and
// reported as "no artwork"; nothing in this package panics or returns a network
// error to browsing code.
package artwork
