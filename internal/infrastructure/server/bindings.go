package server

import (
	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/domain/icons"
	"github.com/GriffinCanCode/webtop/internal/domain/theme"
	"github.com/GriffinCanCode/webtop/internal/domain/windows"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/persistence"
)

// Store keys and envelope versions of the persisted desktop state
const (
	IconsStore   = "icons-store"
	WindowsStore = "windows-store"
	ThemeStore   = "theme-store"

	stateVersion = 0
)

func iconsBinding(d *desktop.Desktop) persistence.Binding[*icons.State] {
	reg := d.Icons()
	return persistence.Binding[*icons.State]{
		Name:     IconsStore,
		Version:  stateVersion,
		Snapshot: reg.State,
		Restore:  reg.Restore,
		Subscribe: func(notify func()) func() {
			return reg.Subscribe(func(*icons.State) { notify() })
		},
	}
}

func windowsBinding(d *desktop.Desktop) persistence.Binding[*windows.State] {
	reg := d.Windows()
	return persistence.Binding[*windows.State]{
		Name:     WindowsStore,
		Version:  stateVersion,
		Snapshot: reg.State,
		Restore:  reg.Load,
		Subscribe: func(notify func()) func() {
			return reg.Subscribe(func(*windows.State) { notify() })
		},
	}
}

func themeBinding(d *desktop.Desktop) persistence.Binding[*theme.State] {
	store := d.Theme()
	return persistence.Binding[*theme.State]{
		Name:     ThemeStore,
		Version:  stateVersion,
		Snapshot: store.State,
		Restore:  store.Restore,
		Subscribe: func(notify func()) func() {
			return store.Subscribe(func(*theme.State) { notify() })
		},
	}
}
