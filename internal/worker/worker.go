package worker

import (
	"context"
	"log"
	"sync"

	"griffe-orders/internal/broker"
	"griffe-orders/internal/models"
	"griffe-orders/internal/util"

	"go.uber.org/zap"
)

// MessageSender delivers a rendered notification to a destination. The real
// delivery channel (WhatsApp gateway) is a collaborator; retries are its
// responsibility, not the worker's.
type MessageSender interface {
	Send(ctx context.Context, destination, message string) error
}

// NotifierWorker consumes OrderSentToSupplier events and hands the rendered
// message to the sender.
type NotifierWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	sender       MessageSender
	logger       *zap.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewNotifierWorker creates a new supplier-notifier worker
func NewNotifierWorker(consumer *broker.Consumer, sender MessageSender) *NotifierWorker {
	w := &NotifierWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		sender:       sender,
		logger:       util.GetLogger(),
		seen:         make(map[string]struct{}),
	}

	w.eventHandler.OnOrderSentToSupplier(w.handleOrderSent)
	return w
}

// Start starts the worker
func (w *NotifierWorker) Start(ctx context.Context) error {
	log.Println("Starting supplier-notifier worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotifierWorker) Stop() error {
	log.Println("Stopping supplier-notifier worker...")
	return w.consumer.Close()
}

func (w *NotifierWorker) handleOrderSent(ctx context.Context, event *models.OrderSentToSupplierEvent) error {
	if w.alreadySeen(event.EventID) {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := w.sender.Send(ctx, event.Destination, event.Message); err != nil {
		// A failed delivery stays retryable on the next redelivery.
		w.forget(event.EventID)
		w.logger.Error("Failed to deliver supplier notification",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	util.SupplierMessagesDeliveredTotal.Inc()
	w.logger.Info("Supplier notification delivered",
		zap.String("order_id", event.OrderID),
		zap.String("destination", event.Destination))
	return nil
}

func (w *NotifierWorker) alreadySeen(eventID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[eventID]; ok {
		return true
	}
	w.seen[eventID] = struct{}{}
	return false
}

func (w *NotifierWorker) forget(eventID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.seen, eventID)
}

// LogSender is the default MessageSender: it only logs the outgoing message.
// Swapped for a real gateway client in deployments that have one.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that logs instead of delivering
func NewLogSender() *LogSender {
	return &LogSender{logger: util.GetLogger()}
}

// Send logs the message that would have been delivered
func (ls *LogSender) Send(_ context.Context, destination, message string) error {
	ls.logger.Info("Supplier notification (log sender)",
		zap.String("destination", destination),
		zap.String("message", message))
	return nil
}
