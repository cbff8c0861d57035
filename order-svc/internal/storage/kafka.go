package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// AuditWriter appends every committed transition to the
// order-status-log topic, keyed by order id so one order's history
// stays on one partition.
type AuditWriter struct {
	writer *kafka.Writer
}

func NewAuditWriter(writer *kafka.Writer) *AuditWriter {
	return &AuditWriter{writer: writer}
}

func (a *AuditWriter) Append(msg domain.AuditMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return a.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.OrderID),
		Value: payload,
	})
}

func (a *AuditWriter) Close() error {
	return a.writer.Close()
}
