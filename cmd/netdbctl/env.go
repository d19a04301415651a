package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/erikjseidel/salt-netdb/pkg/grains"
	"github.com/erikjseidel/salt-netdb/pkg/netdb"
	"github.com/erikjseidel/salt-netdb/pkg/operations"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/runner"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

// routerOptions collects the write flags of a router change.
func routerOptions() operations.Options {
	return operations.Options{
		Test:      !executeMode,
		Debug:     debugMode,
		Force:     forceMode,
		Permanent: permanentMode,
	}
}

// routerOverlay opens the overlay of the configured router. The caller
// closes the store.
func routerOverlay() (*overlay.Overlay, *overlay.RedisStore) {
	store := overlay.NewRedisStore(userSettings.Redis.Addr, userSettings.Redis.DB)
	return overlay.New(store, util.NormalizeSetID(userSettings.Netdb.ID)), store
}

// withManager builds a Manager for the configured router and runs fn with
// it. The router is only logged in to when device is set.
func withManager(ctx context.Context, device bool, fn func(m *operations.Manager) *result.Return) *result.Return {
	client, err := netdb.New(userSettings.NetdbConfig())
	if err != nil {
		return result.FromError(err)
	}
	g, err := grains.Load(ctx, client, userSettings.Netdb.ID, userSettings.Device.OS)
	if err != nil {
		return result.FromError(err)
	}

	ov, store := routerOverlay()
	defer store.Close()

	var exec vyos.Executor
	if device && g.IsVyOS() {
		router, sh, err := dialRouter()
		if err != nil {
			return result.FromError(err)
		}
		defer sh.Close()
		exec = router
	}

	m, err := operations.New(operations.Config{
		Netdb:   client,
		Overlay: ov,
		Device:  exec,
		Grains:  g,
		User:    currentUser(),
	})
	if err != nil {
		return result.FromError(err)
	}
	return fn(m)
}

// dialRouter logs in to the router, prompting for the password when the
// settings carry none.
func dialRouter() (*vyos.Router, *vyos.SSHShell, error) {
	if err := userSettings.ValidateDevice(); err != nil {
		return nil, nil, err
	}
	cfg := userSettings.SSHConfig()
	if cfg.Password == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return nil, nil, fmt.Errorf("device.password not set and stdin is not a terminal")
		}
		fmt.Fprintf(os.Stderr, "Password for %s@%s: ", cfg.User, cfg.Host)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, nil, fmt.Errorf("reading password: %w", err)
		}
		cfg.Password = string(pw)
	}
	util.WithRouter(userSettings.Netdb.ID).WithField("host", cfg.Host).Debug("Connecting to router")
	return vyos.DialRouter(cfg)
}

// newRunner builds a Runner. The netdb-util client is only configured when
// netdb.util_url is set.
func newRunner() (*runner.Runner, error) {
	cfg := userSettings.NetdbConfig()
	client, err := netdb.New(cfg)
	if err != nil {
		return nil, err
	}
	rc := runner.Config{Netdb: client, User: currentUser()}
	if cfg.UtilURL != "" {
		u, err := netdb.NewUtil(cfg)
		if err != nil {
			return nil, err
		}
		rc.Util = u
	}
	return runner.New(rc), nil
}

// withRunner runs fn with a Runner and renders its answer.
func withRunner(write bool, fn func(r *runner.Runner) *result.Return) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	ret := fn(r)
	if write {
		return renderWrite(ret)
	}
	return render(ret)
}
