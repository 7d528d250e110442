package dispatch_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voxjob/transcriber/internal/dispatch"
)

var _ = Describe("pool", func() {
	It("runs submitted tasks", func() {
		pool := dispatch.NewPool(2, 10)
		var count atomic.Int32
		for i := 0; i < 10; i++ {
			Expect(pool.Submit(func(context.Context) { count.Add(1) })).To(Succeed())
		}
		Expect(pool.Stop(context.Background())).To(Succeed())
		Expect(count.Load()).To(BeEquivalentTo(10))
	})

	It("rejects tasks when the queue is full", func() {
		pool := dispatch.NewPool(1, 1)
		started := make(chan struct{})
		release := make(chan struct{})

		Expect(pool.Submit(func(context.Context) {
			close(started)
			<-release
		})).To(Succeed())
		Eventually(started).Should(BeClosed())

		Expect(pool.Submit(func(context.Context) {})).To(Succeed())
		Expect(pool.Submit(func(context.Context) {})).To(MatchError(dispatch.ErrPoolSaturated))

		close(release)
		Expect(pool.Stop(context.Background())).To(Succeed())
	})

	It("rejects tasks once stopped", func() {
		pool := dispatch.NewPool(1, 1)
		Expect(pool.Stop(context.Background())).To(Succeed())
		Expect(pool.Submit(func(context.Context) {})).To(MatchError(dispatch.ErrPoolStopped))
		Expect(pool.Stop(context.Background())).To(Succeed())
	})

	It("cancels running tasks when stop times out", func() {
		pool := dispatch.NewPool(1, 1)
		cancelled := make(chan struct{})
		Expect(pool.Submit(func(ctx context.Context) {
			<-ctx.Done()
			close(cancelled)
		})).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		Expect(pool.Stop(ctx)).To(MatchError(context.DeadlineExceeded))
		Eventually(cancelled).Should(BeClosed())
	})

	It("returns on timeout even when a task ignores cancellation", func() {
		pool := dispatch.NewPool(1, 1)
		release := make(chan struct{})
		defer close(release)
		Expect(pool.Submit(func(context.Context) { <-release })).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		start := time.Now()
		Expect(pool.Stop(ctx)).To(MatchError(context.DeadlineExceeded))
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("survives a panicking task", func() {
		pool := dispatch.NewPool(1, 2)
		var ran atomic.Bool
		Expect(pool.Submit(func(context.Context) { panic("boom") })).To(Succeed())
		Expect(pool.Submit(func(context.Context) { ran.Store(true) })).To(Succeed())
		Expect(pool.Stop(context.Background())).To(Succeed())
		Expect(ran.Load()).To(BeTrue())
	})
})
