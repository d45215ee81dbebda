// Package testsupport provides shared fixtures for tests: temp-dir configs,
// store helpers, and a scriptable fake content source.
package testsupport
