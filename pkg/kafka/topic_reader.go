package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"go.uber.org/zap"
)

// ErrKeyNotFound is returned when no record with the requested key exists in
// the scanned range.
var ErrKeyNotFound = errors.New("no record found for key")

// TopicReader performs one-shot keyed lookups against a topic. Every call
// builds a throwaway client with a unique client id, so lookups never join a
// shared consumer group and never commit offsets.
type TopicReader struct {
	brokers []string
	logger  *zap.Logger
}

func NewTopicReader(brokers []string, logger *zap.Logger) *TopicReader {
	return &TopicReader{
		brokers: brokers,
		logger:  logger,
	}
}

func (r *TopicReader) newClient() (sarama.Client, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V3_0_0_0
	config.ClientID = "topic-reader-" + uuid.NewString()
	config.Consumer.Return.Errors = true

	client, err := sarama.NewClient(r.brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return client, nil
}

// FindRecent watches the tail of every partition for up to window and returns
// the value of the first record whose key matches.
func (r *TopicReader) FindRecent(ctx context.Context, topic, key string, window time.Duration) ([]byte, error) {
	client, err := r.newClient()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			mylogger.Warn(ctx, r.logger, "Failed to close kafka client", zap.Error(err))
		}
	}()

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	partitions, err := consumer.Partitions(topic)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions of %s: %w", topic, err)
	}

	done := make(chan struct{})
	defer close(done)

	messages := make(chan *sarama.ConsumerMessage, len(partitions))

	var partitionConsumers []sarama.PartitionConsumer
	defer func() {
		for _, pc := range partitionConsumers {
			pc.AsyncClose()
		}
	}()

	for _, partition := range partitions {
		pc, err := consumer.ConsumePartition(topic, partition, sarama.OffsetNewest)
		if err != nil {
			return nil, fmt.Errorf("failed to consume partition %d: %w", partition, err)
		}

		partitionConsumers = append(partitionConsumers, pc)

		go func(pc sarama.PartitionConsumer) {
			for msg := range pc.Messages() {
				select {
				case messages <- msg:
				case <-done:
					return
				}
			}
		}(pc)
	}

	timer := time.NewTimer(window)
	defer timer.Stop()

	for {
		select {
		case msg := <-messages:
			if string(msg.Key) == key {
				return msg.Value, nil
			}
		case <-timer.C:
			return nil, ErrKeyNotFound
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// FindFromBeginning rewinds every partition to its earliest retained offset
// and scans forward until a matching key is found or the partition's end
// offset, captured before the scan, is reached. The end-offset bound keeps
// the scan finite even while producers keep appending.
func (r *TopicReader) FindFromBeginning(ctx context.Context, topic, key string, pollTimeout time.Duration) ([]byte, error) {
	client, err := r.newClient()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			mylogger.Warn(ctx, r.logger, "Failed to close kafka client", zap.Error(err))
		}
	}()

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	partitions, err := consumer.Partitions(topic)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions of %s: %w", topic, err)
	}

	for _, partition := range partitions {
		value, found, err := r.scanPartition(ctx, client, consumer, topic, partition, key, pollTimeout)
		if err != nil {
			return nil, err
		}
		if found {
			return value, nil
		}
	}

	return nil, ErrKeyNotFound
}

func (r *TopicReader) scanPartition(
	ctx context.Context,
	client sarama.Client,
	consumer sarama.Consumer,
	topic string,
	partition int32,
	key string,
	pollTimeout time.Duration,
) ([]byte, bool, error) {
	oldest, err := client.GetOffset(topic, partition, sarama.OffsetOldest)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get oldest offset of partition %d: %w", partition, err)
	}

	// Next offset to be written; records at or past it are out of scope.
	end, err := client.GetOffset(topic, partition, sarama.OffsetNewest)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get end offset of partition %d: %w", partition, err)
	}

	if oldest >= end {
		return nil, false, nil
	}

	pc, err := consumer.ConsumePartition(topic, partition, oldest)
	if err != nil {
		return nil, false, fmt.Errorf("failed to consume partition %d: %w", partition, err)
	}
	defer func() {
		if err := pc.Close(); err != nil {
			mylogger.Warn(ctx, r.logger, "Failed to close partition consumer", zap.Error(err))
		}
	}()

	timer := time.NewTimer(pollTimeout)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-pc.Messages():
			if !ok {
				return nil, false, nil
			}

			if string(msg.Key) == key {
				return msg.Value, true, nil
			}

			if msg.Offset >= end-1 {
				return nil, false, nil
			}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(pollTimeout)
		case <-timer.C:
			return nil, false, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}
