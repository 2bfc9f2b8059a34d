package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	generalDomain "github.com/sakashimaa/go-banking-saga/pkg/domain"
	"github.com/sakashimaa/go-banking-saga/pkg/kafka"
	"github.com/sakashimaa/go-banking-saga/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrStatusNotFound means no outcome for the request id has been observed
// yet: the request is still processing or the id is unknown. Callers should
// retry the query after a delay.
var ErrStatusNotFound = errors.New("account creation outcome not found")

// StatusService resolves a request id against the response topic itself;
// there is no durable request-status table. Phase one watches a short recent
// window at the tail of the log; phase two rewinds every partition up to a
// pre-captured end offset.
type StatusService struct {
	reader       *kafka.TopicReader
	topic        string
	recentWindow time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
	tracer       trace.Tracer
}

func NewStatusService(
	reader *kafka.TopicReader,
	topic string,
	recentWindow time.Duration,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		reader:       reader,
		topic:        topic,
		recentWindow: recentWindow,
		pollTimeout:  pollTimeout,
		logger:       logger,
		tracer:       otel.Tracer("status_service"),
	}
}

func (s *StatusService) GetRequestStatus(ctx context.Context, requestID string) (*generalDomain.AccountCreationOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "StatusService.GetRequestStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("request_id", requestID),
	)

	payload, err := s.reader.FindRecent(ctx, s.topic, requestID, s.recentWindow)
	if errors.Is(err, kafka.ErrKeyNotFound) {
		mylogger.Debug(
			ctx,
			s.logger,
			"Outcome not in recent window, rewinding topic",
			zap.String("request_id", requestID),
		)

		payload, err = s.reader.FindFromBeginning(ctx, s.topic, requestID, s.pollTimeout)
	}

	if errors.Is(err, kafka.ErrKeyNotFound) {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			s.logger,
			"Failed to scan response topic",
			zap.String("request_id", requestID),
			zap.Error(err),
		)

		return nil, err
	}

	var outcome generalDomain.AccountCreationOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}

	return &outcome, nil
}
