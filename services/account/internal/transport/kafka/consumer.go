package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/kafka"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"github.com/sakashimaa/go-banking-saga/services/account/internal/service"
	"go.uber.org/zap"
)

type Consumer struct {
	service service.ProvisioningService
	groupID string
	topic   string
	logger  *zap.Logger
}

func NewConsumer(service service.ProvisioningService, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		service: service,
		groupID: groupID,
		topic:   topic,
		logger:  logger,
	}
}

func (c *Consumer) Start(ctx context.Context, brokers []string) {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		c.groupID,
		[]string{c.topic},
		c.processMessage,
		c.logger,
	)

	consumerGroup.Run(ctx)
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	mylogger.Info(
		ctx,
		c.logger,
		"Processing account creation request",
		zap.String("topic", msg.Topic),
		zap.Int32("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	var req generalDomain.AccountCreationRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		// A payload that never parses would be redelivered forever;
		// log it and move on.
		mylogger.Error(
			ctx,
			c.logger,
			"Skipping malformed account creation request",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)

		return nil
	}

	if err := c.service.HandleCreationRequest(ctx, &req); err != nil {
		mylogger.Error(
			ctx,
			c.logger,
			"Failed to handle account creation request",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)

		return err
	}

	return nil
}
