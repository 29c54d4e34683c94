/*
Package monitoring provides Prometheus metrics for the desktop server.

# Overview

Metrics are registered on a per-instance registry and served by Handler.
Besides HTTP traffic the collector tracks desktop events (as a
desktop.Observer), window and icon counts, state writes and WebSocket
connections.

# Usage

	metrics := monitoring.NewMetrics()
	go metrics.Run(ctx)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	d := desktop.New(desktop.Options{Observer: metrics})
*/
package monitoring
