// Package watchdog restarts the process when request handling stalls.
//
// A Liveness cell holds the time of the last sign of life. The heartbeat
// loop touches it periodically as long as its probe succeeds, and the bot
// handler touches it on every inbound message. The watch loop compares it
// against a staleness threshold and asks a Restarter to replace the
// process when nothing has touched it for too long.
//
// # Usage
//
//	live := watchdog.NewLiveness(time.Now())
//	w := watchdog.New(live, watchdog.NewExecRestarter(), watchdog.WithProbe(client.GetMe))
//	go w.Run(ctx)
package watchdog
