package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/cluster"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
)

// ClustersOptions configures the clusters listing.
type ClustersOptions struct {
	Watch          bool
	IncludeProxmox bool
	// Select is "name@provider".
	Select string
}

// ParseClusterKey parses "name@provider".
func ParseClusterKey(s string) (cluster.Key, error) {
	i := strings.LastIndex(s, "@")
	if i <= 0 || i == len(s)-1 {
		return cluster.Key{}, fmt.Errorf("invalid cluster %q (want name@provider)", s)
	}
	p, err := provider.ParseName(s[i+1:])
	if err != nil {
		return cluster.Key{}, err
	}
	return cluster.Key{Name: s[:i], Provider: p}, nil
}

// Clusters lists the logical clusters across the cloud providers.
func Clusters(ctx context.Context, g Globals, opts ClustersOptions) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	var key *cluster.Key
	if opts.Select != "" {
		k, err := ParseClusterKey(opts.Select)
		if err != nil {
			return err
		}
		key = &k
	}

	view := a.clusterView(opts.IncludeProxmox)
	first := true
	show := func(clusters []cluster.Cluster) error {
		// The view keeps the selection across refreshes once made.
		if key != nil && first {
			if _, err := view.Select(*key); err != nil {
				return err
			}
		}
		first = false
		return a.renderClusters(view, clusters)
	}

	if !opts.Watch {
		return show(view.Refresh(ctx))
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var showErr error
	view.Watch(watchCtx, a.cfg.Refresh.Interval, func(clusters []cluster.Cluster) {
		a.printf("%s\n", time.Now().Format("15:04:05"))
		if err := show(clusters); err != nil {
			showErr = err
			cancel()
		}
	})
	return showErr
}

func (a *app) renderClusters(view *cluster.View, clusters []cluster.Cluster) error {
	selected, ok := view.Selected()
	if a.format != OutputTable {
		if ok {
			return writeStructured(a.out, a.format, selected)
		}
		return writeStructured(a.out, a.format, clusters)
	}
	if !ok {
		a.printf("%s\n", tui.RenderClusters(clusters, nil))
		return nil
	}
	key := selected.Key()
	a.printf("%s\n\n%s\n", tui.RenderClusters(clusters, &key), tui.RenderClusterDetail(selected))
	return nil
}

// ClusterAction names a whole-cluster operation.
type ClusterAction string

// Cluster actions.
const (
	ClusterDelete ClusterAction = "delete"
	ClusterStart  ClusterAction = "start"
	ClusterStop   ClusterAction = "stop"
)

// RunClusterAction applies action to every member of the named cluster.
func RunClusterAction(ctx context.Context, g Globals, action ClusterAction, name, providerName string, yes bool) error {
	p, err := provider.ParseName(providerName)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	view := a.clusterView(p == provider.Proxmox)
	view.Refresh(ctx)
	c, err := view.Find(cluster.Key{Name: name, Provider: p})
	if err != nil {
		return err
	}

	if action == ClusterDelete {
		ok, err := a.confirm(ctx, yes,
			fmt.Sprintf("Delete cluster %s?", c.Key()),
			fmt.Sprintf("This deletes %d instance(s) on %s.", len(c.Instances), c.Provider))
		if err != nil {
			return err
		}
		if !ok {
			a.printf("Cancelled.\n")
			return nil
		}
	}

	actions := cluster.NewActions(a.registry, view, a.logger.WithName("actions"))
	switch action {
	case ClusterDelete:
		err = actions.Delete(ctx, c)
	case ClusterStart:
		err = actions.Start(ctx, c)
	case ClusterStop:
		err = actions.Stop(ctx, c)
	default:
		return fmt.Errorf("unknown cluster action %q", action)
	}
	if err != nil {
		return err
	}

	a.printf("✅ %s %s: %d instance(s)\n", actionPastTense(string(action)), c.Key(), len(c.Instances))
	return nil
}

func actionPastTense(action string) string {
	switch action {
	case "delete":
		return "Deleted"
	case "start":
		return "Started"
	case "stop":
		return "Stopped"
	case "restart":
		return "Restarted"
	}
	return action
}
