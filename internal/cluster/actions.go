package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/util/async"
)

// AdapterSource resolves provider adapters.
type AdapterSource interface {
	Adapter(name provider.Name) (provider.Adapter, error)
}

// Actions applies an operation to every member of a cluster.
type Actions struct {
	adapters AdapterSource
	view     *View
	logger   logr.Logger
}

// NewActions creates Actions. view may be nil; when set it is refreshed after
// every action.
func NewActions(adapters AdapterSource, view *View, logger logr.Logger) *Actions {
	return &Actions{adapters: adapters, view: view, logger: logger}
}

// Delete removes every instance of c and clears the view's selection.
func (a *Actions) Delete(ctx context.Context, c Cluster) error {
	err := a.fanOut(ctx, c, "delete", func(ad provider.Adapter, inst provider.Instance) provider.ActionResult {
		return ad.Delete(ctx, inst.Target(), inst.Location)
	})
	if a.view != nil {
		a.view.ClearSelection()
	}
	return err
}

// Start starts every instance of c.
func (a *Actions) Start(ctx context.Context, c Cluster) error {
	return a.fanOut(ctx, c, "start", func(ad provider.Adapter, inst provider.Instance) provider.ActionResult {
		return ad.Start(ctx, inst.Target(), inst.Location)
	})
}

// Stop stops every instance of c.
func (a *Actions) Stop(ctx context.Context, c Cluster) error {
	return a.fanOut(ctx, c, "stop", func(ad provider.Adapter, inst provider.Instance) provider.ActionResult {
		return ad.Stop(ctx, inst.Target(), inst.Location)
	})
}

func (a *Actions) fanOut(ctx context.Context, c Cluster, verb string, do func(provider.Adapter, provider.Instance) provider.ActionResult) error {
	ad, err := a.adapters.Adapter(c.Provider)
	if err != nil {
		return err
	}

	tasks := make([]async.Task, 0, len(c.Instances))
	for _, inst := range c.Instances {
		tasks = append(tasks, async.Task{
			Name: inst.Target(),
			Func: func(context.Context) error {
				res := do(ad, inst)
				if !res.Success {
					if res.Error == "" {
						return errors.New("action was not successful")
					}
					return errors.New(res.Error)
				}
				return nil
			},
		})
	}

	a.logger.Info("cluster action", "action", verb, "cluster", c.Key().String(), "instances", len(tasks))
	err = async.RunParallel(ctx, tasks)
	if a.view != nil {
		a.view.Refresh(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to %s cluster %s: %w", verb, c.Key(), err)
	}
	return nil
}
