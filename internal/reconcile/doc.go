// Package reconcile merges remote series and chapter metadata into the local
// library while preserving user state such as read flags and user tags. It
// drives single-series refreshes, sequential batch refreshes of the whole
// library, imports, and removal.
package reconcile
