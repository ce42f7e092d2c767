// Package artifacts names, renders, and persists the per-layer output
// files. Filename pattern and frontmatter schema are a compatibility
// surface for readers of the output directory.
package artifacts
