// Package extension defines the content-source contract and the registry of
// loaded sources.
//
// A Source resolves a source-native series identifier to series metadata, a
// chapter listing, and page data. The core treats every call as an opaque,
// possibly-failing remote operation. Two sources ship in-tree: filesystem
// (local folders, see filesystem.go) and webdex (HTML catalogs, see
// webdex.go).
package extension
