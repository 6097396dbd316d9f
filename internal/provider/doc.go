// Package provider adapts the three infrastructure backends behind the console
// (Proxmox VE, Google Cloud and AWS) to one instance model.
//
// Each [Adapter] translates a provider-neutral [SizingSpec] into its backend's
// request shape and maps the heterogeneous listing fields back into [Instance].
// Create, start, stop and delete never return Go errors: failures come back as
// results with Success set to false. List is the exception so callers can tell
// a failed call from an empty answer.
//
// [Registry] holds the adapters and adds the cross-provider operations: hybrid
// creation, the instance-type catalog and credential lookup.
package provider
