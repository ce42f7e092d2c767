// Package services provides the shared error taxonomy and context annotations
// used across pipeline nodes and their external collaborators.
package services
