// Package extract turns a content source into readable text: plain
// text passthrough, URL fetch with HTML stripping, PDF text pull, and
// a degraded placeholder for images.
package extract
