// Package bootstrap runs an application through a fixed lifecycle:
//
//	start components -> OnStart -> OnConfigure -> ready check -> OnReady
//	-> wait for signal -> OnStop -> stop components (reverse order)
//
// OnReady is the "application is fully initialized" signal; hooks that must
// run exactly once after startup, such as announcing the local instance,
// belong there.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(server.NewComponent(srv))
//	app.OnReady(announce)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
