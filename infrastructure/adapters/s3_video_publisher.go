package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/config"
)

type s3VideoPublisher struct {
	logger   outbound.LoggerPort
	s3Svc    *s3.S3
	s3Config *config.S3Config
}

// NewS3VideoPublisher uploads finished debate videos. The local file is kept
// so the download endpoint can still serve it.
func NewS3VideoPublisher(logger outbound.LoggerPort, s3Svc *s3.S3, s3Config *config.S3Config) outbound.VideoPublisherPort {
	return &s3VideoPublisher{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3VideoPublisher) Publish(ctx context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	file, err := os.Open(req.VideoFileName)
	if err != nil {
		s.logger.Error(err, "failed to open final video for publishing")
		return nil, err
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			s.logger.Error(err, "failed to close final video file")
		}
	}(file)

	itemKey := fmt.Sprintf("debate/%s/%s", req.SessionID, filepath.Base(req.VideoFileName))

	_, err = s.s3Svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(itemKey),
		Body:   file,
	})
	if err != nil {
		s.logger.ErrorWithFields(err, "failed to upload final video to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    itemKey,
		})
		return nil, err
	}

	s.logger.InfoWithFields("final video published", map[string]interface{}{
		"bucket": s.s3Config.BucketName,
		"key":    itemKey,
	})

	return &outbound.PublishVideoResponse{
		VideoKey:    itemKey,
		StoreRegion: s.s3Config.Region,
	}, nil
}
