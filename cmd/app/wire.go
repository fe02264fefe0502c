//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/mliu/tubebrief/internal/bootstrap"
	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/domain/transcript"
	"github.com/mliu/tubebrief/internal/infra/config"
	"github.com/mliu/tubebrief/internal/infra/llm/chatgpt"
	httpiface "github.com/mliu/tubebrief/internal/interface/http"
	"github.com/mliu/tubebrief/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChatGPTClient,
		provideSummaryConfig,
		provideTranscriptConfig,
		provideCaptionFetcher,
		provideRepository,
		provideSummaryCache,
		provideAudioStore,
		provideEmbedder,
		summary.NewService,
		transcript.NewService,
		wire.Bind(new(summary.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(transcript.Transcriber), new(*chatgpt.Client)),
		wire.Bind(new(transcript.Summarizer), new(*summary.Service)),
		wire.Bind(new(httpiface.TranscriptService), new(*transcript.Service)),
		provideMaxUploadBytes,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
