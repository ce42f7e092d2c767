// Package textutil provides small text helpers: slug generation, filename
// sanitizing, word counting, and section heading extraction.
package textutil
