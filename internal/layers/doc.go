// Package layers defines the five refinement levels and the nodes that
// produce them, one level per node, each building on the previous one.
package layers
