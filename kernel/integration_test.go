package kernel

import (
	"context"
	"sync"
	"testing"
	"time"

	"nanokernel/hal"
)

// loggingThread appends its name to a shared, mutex-protected log every
// time it runs, yields, and stops after rounds iterations by suspending
// itself forever.
type loggingThread struct {
	k      *Kernel
	name   string
	rounds int
	mu     *sync.Mutex
	log    *[]string
	done   chan struct{}
}

func (l *loggingThread) Run() {
	for i := 0; i < l.rounds; i++ {
		l.mu.Lock()
		*l.log = append(*l.log, l.name)
		l.mu.Unlock()
		l.k.Yield()
	}
	close(l.done)
	l.k.SuspendCallerUntil(EndOfTime, nil)
}

// TestEqualPriorityThreadsAlternateByLastActivation runs two
// equal-priority threads against the real host platform and checks
// that they strictly alternate: each call to Yield hands off to
// whichever thread has the earlier lastActivation, which after the
// first activation is always whichever one just ran least recently.
func TestEqualPriorityThreadsAlternateByLastActivation(t *testing.T) {
	platform := hal.New().Platform()
	k := New(platform, Config{MinSysTickSpacing: 1000, SleepOnIdle: false}, nil, nil)

	var mu sync.Mutex
	var log []string
	doneA := make(chan struct{})
	doneB := make(chan struct{})

	k.AddThread("a", 5, 2048, &loggingThread{k: k, name: "a", rounds: 3, mu: &mu, log: &log, done: doneA})
	k.AddThread("b", 5, 2048, &loggingThread{k: k, name: "b", rounds: 3, mu: &mu, log: &log, done: doneB})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- k.Run(ctx) }()

	select {
	case <-doneA:
	case <-time.After(2 * time.Second):
		t.Fatal("thread a never finished its rounds")
	}
	select {
	case <-doneB:
	case <-time.After(2 * time.Second):
		t.Fatal("thread b never finished its rounds")
	}

	cancel()
	<-runErr

	mu.Lock()
	defer mu.Unlock()
	if len(log) != 6 {
		t.Fatalf("log = %v, want 6 entries", log)
	}
	for i := 0; i < len(log); i++ {
		want := "a"
		if i%2 == 1 {
			want = "b"
		}
		if log[i] != want {
			t.Fatalf("log[%d] = %q, want %q (log: %v)", i, log[i], want, log)
		}
	}
}

// TestHigherPriorityThreadRunsBeforeLowerPriority checks that a
// higher-priority thread always wins selection over a
// perpetually-runnable lower-priority one, even though the
// lower-priority thread is registered first.
func TestHigherPriorityThreadRunsBeforeLowerPriority(t *testing.T) {
	platform := hal.New().Platform()
	k := New(platform, Config{MinSysTickSpacing: 1000, SleepOnIdle: false}, nil, nil)

	var mu sync.Mutex
	var log []string
	doneLow := make(chan struct{})
	doneHigh := make(chan struct{})

	k.AddThread("low", 1, 2048, &loggingThread{k: k, name: "low", rounds: 1, mu: &mu, log: &log, done: doneLow})
	k.AddThread("high", 9, 2048, &loggingThread{k: k, name: "high", rounds: 1, mu: &mu, log: &log, done: doneHigh})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- k.Run(ctx) }()

	select {
	case <-doneHigh:
	case <-time.After(2 * time.Second):
		t.Fatal("high priority thread never ran")
	}

	cancel()
	<-runErr

	mu.Lock()
	defer mu.Unlock()
	if len(log) == 0 || log[0] != "high" {
		t.Fatalf("log = %v, want high priority thread first", log)
	}
}
