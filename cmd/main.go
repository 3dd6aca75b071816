package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/application/services"
	"debate-video-pipeline/config"
	"debate-video-pipeline/infrastructure/adapters"
	"debate-video-pipeline/infrastructure/gin_interface/controllers"
	"debate-video-pipeline/middleware"
	mocklipsync "debate-video-pipeline/mock"
)

func main() {
	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	argumentConfig, err := config.GetArgumentConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get argument config")
	}

	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	gttsConfig := config.GetGttsConfig()

	renderConfig, err := config.GetRenderConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get render config")
	}

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	voiceProfiles, err := config.GetVoiceProfiles()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get voice profiles")
	}

	if err := os.MkdirAll(pipelineConfig.WorkDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create work directory")
	}
	if err := os.MkdirAll(pipelineConfig.OutputDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(pipelineConfig.WorkerPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	contentFetcher := adapters.NewContentFetcher(zeroLogger)

	var remoteGenerator outbound.ArgumentGeneratorPort
	if argumentConfig != nil {
		remoteGenerator = adapters.NewLMStudioArgumentGenerator(zeroLogger, argumentConfig)
	}
	templateGenerator := adapters.NewTemplateArgumentGenerator(zeroLogger)

	elevenLabsProvider := adapters.NewElevenLabsProvider(contentFetcher, zeroLogger, elevenLabsConfig)
	gttsProvider := adapters.NewGttsProvider(contentFetcher, zeroLogger, gttsConfig)

	audioNormalizer := adapters.NewFFmpegAudioNormalizer(zeroLogger)
	renderClient := adapters.NewSadTalkerRenderClient(zeroLogger, renderConfig)
	compositor := adapters.NewFFmpegCompositor(zeroLogger)

	var videoPublisher outbound.VideoPublisherPort
	var turnRecorder outbound.TurnRecorderPort
	if s3Config != nil || dynamoConfig != nil {
		sess := session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		}))
		if s3Config != nil {
			s3Client := s3.New(sess, aws.NewConfig().WithRegion(s3Config.Region))
			videoPublisher = adapters.NewS3VideoPublisher(zeroLogger, s3Client, s3Config)
		}
		if dynamoConfig != nil {
			turnRecorder = adapters.NewDynamoTurnRecorder(zeroLogger, dynamodb.New(sess), dynamoConfig)
		}
	}

	roundPlanner := services.NewRoundPlanner(pipelineConfig.AlternateOpening)
	argumentClient := services.NewArgumentClient(zeroLogger, remoteGenerator, templateGenerator)
	voiceSynthesizer := services.NewVoiceSynthesizer(zeroLogger,
		[]outbound.SpeechProviderPort{elevenLabsProvider, gttsProvider}, audioNormalizer, voiceProfiles)

	debatePipeline := services.NewPipelineOrchestrator(zeroLogger, workerPool, roundPlanner, argumentClient,
		voiceSynthesizer, renderClient, compositor, videoPublisher, turnRecorder, voiceProfiles,
		pipelineConfig.WorkDir, pipelineConfig.OutputDir, os.Getenv("BACKGROUND_FILE"),
		pipelineConfig.RequestTimeout)

	argumentURL := ""
	if argumentConfig != nil {
		argumentURL = argumentConfig.ApiUrl
	}
	healthChecker := adapters.NewCollaboratorHealthChecker(zeroLogger, argumentURL, gttsConfig.ApiUrl)

	debateController := controllers.NewDebateController(zeroLogger, debatePipeline, healthChecker, pipelineConfig.OutputDir)

	router := gin.Default()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if jwksUrl := os.Getenv("JWKS_URL"); jwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(jwksUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	}

	if enabled, _ := strconv.ParseBool(os.Getenv("MOCK_LIPSYNC")); enabled {
		if err := mocklipsync.Init(router, workerPool, zeroLogger, pipelineConfig.WorkDir); err != nil {
			log.Fatal().Err(err).Msg("Failed to init mock lipsync service")
		}
	}

	debateController.RegisterRoutes(router)

	if err := router.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
