package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/config"
)

type dynamoTurnItem struct {
	SessionId string  `dynamodbav:"session_id"`
	Sequence  int     `dynamodbav:"sequence"`
	Stage     string  `dynamodbav:"stage"`
	Status    string  `dynamodbav:"status"`
	FileName  string  `dynamodbav:"file_name"`
	Duration  float64 `dynamodbav:"duration"`
	TTL       int64   `dynamodbav:"ttl"`
}

type dynamoTurnRecorder struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

// NewDynamoTurnRecorder stores per-turn artifact metadata with a TTL so the
// state of a failed request can be inspected after the process is gone.
func NewDynamoTurnRecorder(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB,
	dynamoConfig *config.DynamoConfig) outbound.TurnRecorderPort {
	return &dynamoTurnRecorder{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (r *dynamoTurnRecorder) Record(ctx context.Context, record outbound.TurnRecord) error {
	item := dynamoTurnItem{
		SessionId: record.SessionID,
		Sequence:  record.Sequence,
		Stage:     record.Stage,
		Status:    record.Status,
		FileName:  record.FileName,
		Duration:  record.Duration,
		TTL:       time.Now().Add(time.Duration(r.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		r.logger.ErrorWithFields(err, "failed to marshal turn record", map[string]interface{}{
			"session":  record.SessionID,
			"sequence": record.Sequence,
		})
		return err
	}

	_, err = r.dynamoSvc.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(r.dynamoConfig.TableName),
	})
	if err != nil {
		r.logger.ErrorWithFields(err, "failed to save turn record", map[string]interface{}{
			"session":  record.SessionID,
			"sequence": record.Sequence,
		})
	}
	return err
}
