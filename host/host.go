// Package host wires the bridge to its collaborators according to the configuration.
package host

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mobile-next/nativescreenshot/bridge"
	"github.com/mobile-next/nativescreenshot/config"
	"github.com/mobile-next/nativescreenshot/media"
	"github.com/mobile-next/nativescreenshot/permissions"
	"github.com/mobile-next/nativescreenshot/storage"
	"github.com/mobile-next/nativescreenshot/surface"
	"github.com/mobile-next/nativescreenshot/utils"
)

// Host owns a bridge and everything attached to it.
type Host struct {
	Config   *config.Config
	Bridge   *bridge.Bridge
	Paths    *storage.Paths
	Grants   permissions.GrantStore
	Notifier *media.Notifier
	Recent   *media.Recent
	// Store is nil when the persistent media index is disabled.
	Store *media.Store

	teardown []teardownStep
}

type teardownStep struct {
	name string
	fn   func() error
}

// onClose registers a step for Close. Steps run in reverse registration order.
func (h *Host) onClose(name string, fn func() error) {
	h.teardown = append(h.teardown, teardownStep{name: name, fn: fn})
}

// New builds the collaborators and attaches engine and activity to a fresh bridge.
func New(cfg *config.Config) (*Host, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	paths := storage.NewPaths(cfg.Storage.Dir)

	surf, err := surface.Open(surface.Options{
		Kind:    cfg.Surface.Type,
		Display: cfg.Surface.Display,
		File:    cfg.Surface.File,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening rendering surface: %w", err)
	}

	recent, err := media.NewRecent(cfg.Media.Recent)
	if err != nil {
		return nil, err
	}

	h := &Host{
		Config:   cfg,
		Paths:    paths,
		Grants:   permissions.NewKeyringStore(storage.SafeAppName(cfg.App.Name)),
		Recent:   recent,
		Notifier: media.NewNotifier(recent),
	}

	if cfg.Media.Database != "" {
		store, err := media.OpenStore(cfg.Media.Database)
		if err != nil {
			return nil, err
		}
		h.Store = store
		h.Notifier.AddSink(store)
		h.onClose("media index", store.Close)
	}

	checker := &permissions.Checker{
		Dir:          filepath.Join(paths.ExternalDir, storage.SafeAppName(cfg.App.Name)),
		Grants:       h.Grants,
		RequireGrant: cfg.Permissions.RequireGrant,
	}

	h.Bridge = bridge.New(paths)
	h.Bridge.AttachEngine(bridge.Engine{Surface: surf, AppName: cfg.App.Name})
	h.onClose("engine", func() error {
		h.Bridge.DetachEngine()
		return nil
	})

	h.Bridge.AttachActivity(bridge.Activity{Permissions: checker, Media: h.Notifier})
	h.onClose("activity", func() error {
		h.Bridge.DetachActivity()
		return nil
	})

	utils.Verbose("bridge attached: surface=%s storage=%s", cfg.Surface.Type, paths.ExternalDir)
	return h, nil
}

// Close detaches the bridge and releases the media index. Every step runs even if an
// earlier one fails. Calling Close twice is a no-op.
func (h *Host) Close() error {
	var errs []error

	for i := len(h.teardown) - 1; i >= 0; i-- {
		step := h.teardown[i]
		utils.Verbose("closing %s", step.name)
		if err := step.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	h.teardown = nil

	return errors.Join(errs...)
}
