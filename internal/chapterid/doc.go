// Package chapterid decides which chapter releases are "the same chapter" and
// which duplicate release is canonical for navigation.
//
// Content sources routinely list several releases of one chapter (different
// scanlation groups, different languages). Everything here is a pure function
// over chapter values so reconciliation and reader navigation stay
// reproducible.
package chapterid
