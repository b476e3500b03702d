// Package pricing turns the raw per-store price records returned by the
// backend into a ranked price list.
//
// Rank drops malformed records (nil entries, missing store, unparsable or
// non-positive price), keeps the first record seen for every store, sorts
// the survivors by ascending price and marks every offer whose price equals
// the minimum as the best price. Malformed input is never reported as an
// error; the number of dropped records is available in Ranking.Dropped.
package pricing
