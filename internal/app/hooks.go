package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/pinchmaze/internal/game"
	"github.com/ayusman/pinchmaze/internal/plugin"
	"github.com/ayusman/pinchmaze/internal/store"
)

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// fireHooks runs every enabled hook bound to event in the background so the
// frame pump never waits on a plugin.
func (a *App) fireHooks(event store.HookEvent, snap game.Snapshot) {
	if a.config.Store == nil {
		return
	}

	hooks, err := a.config.Store.Hooks().ListByEvent(event)
	if err != nil {
		a.log.Error(fmt.Sprintf("Failed to load %s hooks: %v", event, err))
		return
	}

	for _, h := range hooks {
		req := &plugin.Request{
			Action: h.ActionName,
			Event:  string(event),
			Maze:   snap.Maze,
			Status: snap.Status.String(),
			Config: h.Config,
		}

		a.hooks.Add(1)
		go func(h *store.Hook) {
			defer a.hooks.Done()
			a.runHook(h, req)
		}(h)
	}
}

func (a *App) runHook(h *store.Hook, req *plugin.Request) {
	p, err := a.pluginMgr.Resolve(h.PluginName, h.ActionName, req.Event)
	if err != nil {
		a.log.Warning(fmt.Sprintf("Hook %s skipped: %v", h.ID, err))
		return
	}

	resp, err := a.pluginExec.Execute(context.Background(), p, req)
	if err != nil {
		a.log.Error(fmt.Sprintf("Hook %s (%s/%s) failed: %v", h.ID, h.PluginName, h.ActionName, err))
		return
	}
	if !resp.Success {
		a.log.Warning(fmt.Sprintf("Hook %s (%s/%s) reported: %s", h.ID, h.PluginName, h.ActionName, resp.Error))
		return
	}

	a.log.Info(fmt.Sprintf("Hook %s ran %s/%s on %s", h.ID, h.PluginName, h.ActionName, req.Event))
}

// WaitHooks blocks until every hook started so far has finished.
func (a *App) WaitHooks() {
	a.hooks.Wait()
}
