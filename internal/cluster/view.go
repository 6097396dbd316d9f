package cluster

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/util/async"
)

// Lister lists one provider's instances.
type Lister interface {
	Name() provider.Name
	List(ctx context.Context, location string) ([]provider.Instance, error)
}

// Source is a provider listing feeding the view.
type Source struct {
	Lister   Lister
	Location string
}

// View is the refreshed cluster list plus the operator's selection.
type View struct {
	sources []Source
	logger  logr.Logger

	mu          sync.RWMutex
	clusters    []Cluster
	selected    *Key
	refreshedAt time.Time
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithViewLogger sets the logger.
func WithViewLogger(l logr.Logger) ViewOption {
	return func(v *View) {
		v.logger = l
	}
}

// NewView creates a view over sources. The cluster list starts empty.
func NewView(sources []Source, opts ...ViewOption) *View {
	v := &View{
		sources: sources,
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Refresh lists every source concurrently and regroups the result.
//
// A source answering success:false contributes no clusters. Any other failure
// fails the whole refresh: it is logged and the list becomes empty. Concurrent
// refreshes are not coalesced; whichever finishes last is kept.
func (v *View) Refresh(ctx context.Context) []Cluster {
	fns := make([]func(context.Context) ([]Cluster, error), len(v.sources))
	for i, src := range v.sources {
		fns[i] = func(ctx context.Context) ([]Cluster, error) {
			instances, err := src.Lister.List(ctx, src.Location)
			if errors.Is(err, provider.ErrListUnsuccessful) {
				v.logger.V(1).Info("provider listing unsuccessful", "provider", src.Lister.Name(), "error", err.Error())
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return Group(instances, src.Lister.Name()), nil
		}
	}

	groups, err := async.Collect(ctx, fns...)
	var clusters []Cluster
	if err != nil {
		v.logger.Error(err, "failed to load clusters")
		recordRefreshMetric("error")
	} else {
		for _, g := range groups {
			clusters = append(clusters, g...)
		}
		recordRefreshMetric("success")
	}
	recordClusterCounts(clusters)

	v.commit(clusters)
	return clusters
}

func (v *View) commit(clusters []Cluster) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clusters = clusters
	v.refreshedAt = time.Now()
	if v.selected != nil {
		if _, ok := Find(clusters, *v.selected); !ok {
			v.selected = nil
		}
	}
}

// Clusters returns the clusters of the last completed refresh.
func (v *View) Clusters() []Cluster {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Cluster, len(v.clusters))
	copy(out, v.clusters)
	return out
}

// RefreshedAt returns when the last refresh completed.
func (v *View) RefreshedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.refreshedAt
}

// Find returns the cluster with key k from the last refresh.
func (v *View) Find(k Key) (Cluster, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := Find(v.clusters, k)
	if !ok {
		return Cluster{}, ErrNotFound
	}
	return c, nil
}

// Select marks the cluster with key k as selected. The selection survives
// refreshes for as long as a cluster with the same key exists.
func (v *View) Select(k Key) (Cluster, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := Find(v.clusters, k)
	if !ok {
		return Cluster{}, ErrNotFound
	}
	v.selected = &k
	return c, nil
}

// Selected returns the selected cluster as of the last refresh.
func (v *View) Selected() (Cluster, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.selected == nil {
		return Cluster{}, false
	}
	return Find(v.clusters, *v.selected)
}

// ClearSelection drops the selection.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
}

// Watch refreshes immediately and then every interval until ctx is done,
// passing each result to fn.
func (v *View) Watch(ctx context.Context, interval time.Duration, fn func([]Cluster)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(v.Refresh(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(v.Refresh(ctx))
		}
	}
}
