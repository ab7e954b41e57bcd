// Package shutdown provides graceful shutdown for tinykv.
//
// A Handler waits for SIGINT, SIGTERM or a programmatic Trigger, then runs
// the registered hooks in reverse registration order under one shared
// timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown("redis server", srv.Shutdown)
//	if err := h.Wait(); err != nil { ... }
package shutdown
