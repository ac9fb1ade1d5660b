// Package delivery moves notifications from pending to a terminal state.
//
// The Dispatcher creates pending notifications, single or in bulk. The
// Worker polls storage for due notifications, resolves recipients through
// the directory and sends through the channel gateways; transient failures
// are requeued with backoff until the attempt budget runs out, permanent
// failures terminate immediately. Receipts applies asynchronous provider
// confirmations and client read receipts, and the Reaper fails anything
// stuck in a non-terminal state for too long.
//
// A minimal pipeline:
//
//	store := notification.NewMemoryStorage()
//	tracker := notification.NewTracker(store)
//	disp := delivery.NewDispatcher(store, tracker)
//
//	worker := delivery.NewWorker(store, tracker, dir)
//	worker.RegisterGateway(pushGW)
//	worker.RegisterGateway(smsGW)
//	_ = worker.Start(ctx)
//	defer worker.Stop()
//
//	_, _ = disp.Send(ctx, delivery.SendRequest{
//		RecipientID: "tourist-1",
//		Channel:     notification.ChannelPush,
//		Title:       "Flood warning",
//		Body:        "Move to higher ground",
//	})
package delivery
