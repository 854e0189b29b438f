package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/emajohn/checkout/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes messages through a buffered inbox so callers never
// block on the broker
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewProducer creates producer for topic
func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the publishing loop until ctx is cancelled, flushing the
// remaining inbox before closing the writer
func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				// mark closed before closing the inbox so a publish racing
				// with shutdown is dropped instead of hitting a closed channel
				p.mu.Lock()
				p.closed = true
				close(p.inbox)
				p.mu.Unlock()

				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		logger.Log.Error("kafka write", zap.Error(err))
	}
}

// Publish enqueues one message. A message published after shutdown or
// into a full inbox is dropped with a log entry, never an error or a
// blocked caller.
func (p *Producer) Publish(key, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		logger.Log.Warn("event dropped, producer stopped", zap.ByteString("key", key))
		return
	}

	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now()}:
	default:
		logger.Log.Warn("event dropped, producer inbox full", zap.ByteString("key", key))
	}
}

// WaitClosed blocks until the flush loop has exited
func (p *Producer) WaitClosed() { <-p.closeCh }
