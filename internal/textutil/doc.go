// Package textutil provides the text normalization shared by cache keys,
// title matching and display formatting.
//
// Fold produces the comparison form of a string: Unicode compatibility
// decomposition with combining marks removed, lower-cased, with every run of
// non-alphanumeric characters collapsed to a single space. Two strings that
// differ only in case, accents or punctuation therefore fold to the same key.
package textutil
