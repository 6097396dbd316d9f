package handlers

import (
	"context"
	"io"
	"sync"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/assistant"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/console"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/events"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/executor"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
)

// eventSink connects to NATS when configured. A connection failure is logged
// and events are dropped.
func (a *app) eventSink() (events.Sink, func()) {
	if a.cfg.Events.NATSURL == "" {
		return events.NopSink{}, func() {}
	}
	pub, err := events.NewPublisher(a.cfg.Events.NATSURL, a.cfg.Events.Subject, a.logger.WithName("events"))
	if err != nil {
		a.logger.Error(err, "execution events disabled")
		return events.NopSink{}, func() {}
	}
	a.logger.V(1).Info("publishing execution events", "subject", pub.Subject())
	return pub, pub.Close
}

// newSession wires the assistant backend, the executor and the event sink
// around log.
func (a *app) newSession(log *conversation.Log, sink events.Sink, opts ...executor.Option) *console.Session {
	opts = append([]executor.Option{
		executor.WithEventSink(sink),
		executor.WithRedirectDelay(a.cfg.Executor.RedirectDelay),
	}, opts...)
	return console.New(assistant.NewClient(a.api), log,
		console.WithLogger(a.logger.WithName("console")),
		console.WithExecutorOptions(opts...),
	)
}

// syncWriter serializes writes from the prompt loop and the redirect timer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// clustersNavigator prints the cluster list when the executor redirects.
func (a *app) clustersNavigator(ctx context.Context, w io.Writer) executor.Navigator {
	view := a.clusterView(false)
	return executor.NavigatorFunc(func(string) {
		clusters := view.Refresh(ctx)
		_, _ = io.WriteString(w, tui.RenderClusters(clusters, nil)+"\n")
	})
}
