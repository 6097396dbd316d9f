// Package cluster groups cloud instances into logical clusters and applies
// whole-cluster actions.
//
// A cluster is a display-time grouping: instances named <base>-<n> on the
// same provider share the cluster <base>, and a "cluster" label or tag takes
// precedence over the name. Nothing is stored; every refresh regroups the
// adapters' listings.
//
//   - cluster.go: Key, Cluster and the grouping rules
//   - view.go: refresh, selection and periodic watch over several providers
//   - actions.go: delete, start and stop fanned out over a cluster's members
//   - metrics.go: refresh and action metrics
package cluster
