package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

type StoreInterface interface {
	RecordTransition(msg domain.AuditMessage) error
}

type Consumer struct {
	Reader *kafka.Reader
	Store  StoreInterface
}

func NewConsumer(reader *kafka.Reader, store StoreInterface) *Consumer {
	return &Consumer{
		Reader: reader,
		Store:  store,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	log.Println("Starting transition analytics consumer...")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v", err)
			continue
		}

		var msg domain.AuditMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		if msg.Type == "status_changed" {
			c.ProcessTransition(msg)
		}
	}
}

func (c *Consumer) ProcessTransition(msg domain.AuditMessage) {
	if msg.Type != "status_changed" {
		return
	}
	log.Printf("Processing transition: order=%s %s -> %s",
		msg.OrderID, msg.OldStatus, msg.NewStatus)

	if err := c.Store.RecordTransition(msg); err != nil {
		log.Printf("Error recording transition: %v", err)
	}
}
