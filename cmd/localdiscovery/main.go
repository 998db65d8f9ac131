// Command localdiscovery runs an HTTP service that always has a discovery
// client. With discovery.enabled=true and the consul backend linked it
// registers with Consul; otherwise it falls back to a local self-descriptor
// and announces itself once on startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/localdiscovery/bootstrap"
	"github.com/kbukum/localdiscovery/config"
	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/discovery/local"
	"github.com/kbukum/localdiscovery/event"
	"github.com/kbukum/localdiscovery/logger"
	"github.com/kbukum/localdiscovery/redis"
	"github.com/kbukum/localdiscovery/server"
)

const serviceName = "localdiscovery"

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched in standard locations when empty)")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	if err := run(context.Background(), *configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, envFile string) error {
	var cfg AppConfig
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}

	w, err := wire(&cfg)
	if err != nil {
		return err
	}
	return w.app.Run(ctx)
}

// wiring holds the assembled application and the pieces tests look at.
type wiring struct {
	app    *bootstrap.App[*AppConfig]
	server *server.Server
	bus    *event.Bus
	client func() discovery.DiscoveryClient
	local  *local.Descriptor
}

// wire builds the application. Registration order matters: the server
// starts first so its bound port is known when discovery starts.
func wire(cfg *AppConfig, opts ...bootstrap.Option) (*wiring, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger
	w := &wiring{app: app, bus: event.NewBus(log)}

	sinks := event.MultiSink{w.bus}
	if cfg.Redis.Enabled {
		rc := redis.NewComponent(cfg.Redis, log)
		if err := app.RegisterComponent(rc); err != nil {
			return nil, err
		}
		// the client exists only once the component has started
		sinks = append(sinks, event.SinkFunc(func(ctx context.Context, e event.Event) error {
			c := rc.Client()
			if c == nil {
				return fmt.Errorf("redis not started")
			}
			return event.NewRedisSink(c, c.Channel(), log).Publish(ctx, e)
		}))
	}

	w.server = server.New(cfg.Server, log)
	w.server.RegisterHealthEndpoints(app.Name, app.Components.HealthAll)
	w.server.RegisterDiscoveryEndpoints(func() discovery.DiscoveryClient { return w.client() })
	if err := app.RegisterComponent(server.NewComponent(w.server)); err != nil {
		return nil, err
	}

	if discovery.ShouldUseLocalFallback(cfg.Discovery) {
		log.Info("No discovery backend available, using local fallback", logger.Fields(
			"enabled", cfg.Discovery.Enabled,
			"provider", cfg.Discovery.Provider,
			"linked", discovery.Providers(),
		))
		w.local = local.New(log)
		lc := local.NewComponent(w.local, local.Params{
			AppName:        cfg.ApplicationName(),
			ConfiguredPort: cfg.configuredPort(),
			Listener:       w.server,
			Environment:    cfg,
		})
		if err := app.RegisterComponent(lc); err != nil {
			return nil, err
		}
		w.client = lc.Client
		app.OnReady(lc.Announcer(sinks))
		return w, nil
	}

	dc := discovery.NewComponent(cfg.Discovery, &cfg.Consul, log, discovery.WithListener(w.server))
	if err := app.RegisterComponent(dc); err != nil {
		return nil, err
	}
	w.client = dc.Client
	return w, nil
}
