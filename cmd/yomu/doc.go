// Command yomu manages a manga library from the command line: importing
// series from content sources, refreshing metadata, and fetching chapter
// pages for reading.
package main
