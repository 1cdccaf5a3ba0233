// Package broadcast provides type-safe one-to-many value distribution.
//
// Two flavours are offered:
//
// Subject holds a single latest value and notifies callbacks synchronously,
// in subscription order, on every Next. New subscribers immediately receive
// the current value (replay-latest):
//
//	s := broadcast.NewSubject(0)
//	unsubscribe := s.Subscribe(func(v int) { fmt.Println(v) }) // prints 0
//	s.Next(1)                                                  // prints 1
//	unsubscribe()
//
// MemoryBroadcaster delivers messages to channel-based subscribers without
// blocking the sender. Slow subscribers are dropped rather than stalling the
// broadcast:
//
//	b := broadcast.NewMemoryBroadcaster[string](10, broadcast.WithReplayLatest())
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"})
//	for msg := range sub.Receive(ctx) {
//		fmt.Println(msg.Data)
//	}
//
// The memory implementation automatically handles subscriber cleanup when:
// - The subscriber's context is cancelled
// - The subscriber's buffer is full (drops slow subscribers, unless
//   WithKeepLatest trades old messages for new ones)
// - The broadcaster is closed
package broadcast
