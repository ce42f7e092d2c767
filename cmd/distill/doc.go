// Command distill converts a content source into five progressively
// refined markdown artifacts.
package main
