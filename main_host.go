//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"nanokernel/app"
)

func main() {
	blinkMicros := flag.Int64("blink-us", 500_000, "blink thread period in microseconds, 0 to disable")
	runFor := flag.Duration("run-for", 0, "stop automatically after this long (0 = run until interrupted)")
	monitorEvery := flag.Duration("monitor-every", 5*time.Second, "how often to log each thread's stack high-water mark")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *runFor)
		defer cancel()
	}

	sys := app.NewWithConfig(app.Config{BlinkPeriodMicros: *blinkMicros})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sys.Run(ctx)
	})
	g.Go(func() error {
		return monitorStackUsage(ctx, sys, *monitorEvery)
	})

	if err := g.Wait(); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		fmt.Fprintln(os.Stderr, "nanokernel:", err)
		os.Exit(1)
	}
}

// monitorStackUsage runs alongside the scheduler loop, periodically
// logging every thread's stack high-water mark to stderr until ctx is
// cancelled. It shares the same errgroup as sys.Run: either goroutine
// returning an error cancels ctx for the other, and the scheduler
// stopping (ctx cancelled from outside, e.g. -run-for or SIGINT) stops
// the monitor in turn.
func monitorStackUsage(ctx context.Context, sys *app.System, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			k := sys.Kernel()
			for _, t := range k.Threads() {
				fmt.Fprintf(os.Stderr, "stack: %-10s used=%d\n", t.Name(), k.GetMaxStackUsage(t))
			}
		}
	}
}
