// Package component defines the lifecycle contract shared by infrastructure
// pieces and an ordered Registry that starts and stops them.
package component
