package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/IBM/sarama"
	"github.com/charmbracelet/log"
)

// Tap mirrors public events onto a Kafka topic, keyed by table topic so a
// table's stream stays in order within a partition. Delivery is fire and
// forget: production failures are logged and never reach the hand
// pipeline, and private events never leave the process.
type Tap struct {
	producer  sarama.AsyncProducer
	topic     string
	logger    *log.Logger
	wg        sync.WaitGroup
	closeOnce sync.Once
	dropped   atomic.Int64
}

// NewTap connects an async producer to the given brokers.
func NewTap(brokers []string, topic string, logger *log.Logger) (*Tap, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return newTap(producer, topic, logger), nil
}

func newTap(producer sarama.AsyncProducer, topic string, logger *log.Logger) *Tap {
	t := &Tap{
		producer: producer,
		topic:    topic,
		logger:   logger.WithPrefix("kafka"),
	}
	t.wg.Add(1)
	go t.drainErrors()
	return t
}

func (t *Tap) drainErrors() {
	defer t.wg.Done()
	for perr := range t.producer.Errors() {
		t.logger.Error("Failed to produce event", "topic", t.topic, "error", perr.Err)
	}
}

// Publish mirrors one event. Never blocks: if the producer's input buffer
// is full the event is dropped and counted.
func (t *Tap) Publish(ev Event) {
	if t == nil || ev.IsPrivate() {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		t.logger.Error("Failed to encode event", "kind", ev.Kind, "error", err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: t.topic,
		Key:   sarama.StringEncoder(Topic(ev.TableID)),
		Value: sarama.ByteEncoder(body),
	}
	select {
	case t.producer.Input() <- msg:
	default:
		t.dropped.Add(1)
		t.logger.Debug("Producer buffer full, dropping event", "kind", ev.Kind)
	}
}

// Dropped reports how many events were discarded because the producer's
// input buffer was full.
func (t *Tap) Dropped() int64 {
	if t == nil {
		return 0
	}
	return t.dropped.Load()
}

// Close flushes buffered messages and stops the error drain. Safe on a nil
// tap and safe to call more than once.
func (t *Tap) Close() {
	if t == nil {
		return
	}
	t.closeOnce.Do(func() {
		t.producer.AsyncClose()
		t.wg.Wait()
	})
}
