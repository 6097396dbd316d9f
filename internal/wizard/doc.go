// Package wizard asks the operator for machine and cluster sizing through
// interactive huh forms and turns the answers into provider sizing specs.
package wizard
