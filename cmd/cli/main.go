package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/mliu/tubebrief/internal/domain/summary"
	"github.com/mliu/tubebrief/internal/domain/transcript"
	"github.com/mliu/tubebrief/internal/infra/audiostore"
	"github.com/mliu/tubebrief/internal/infra/captions"
	"github.com/mliu/tubebrief/internal/infra/config"
	"github.com/mliu/tubebrief/internal/infra/embedder"
	"github.com/mliu/tubebrief/internal/infra/llm/chatgpt"
	"github.com/mliu/tubebrief/internal/infra/summarycache"
	"github.com/mliu/tubebrief/internal/infra/transcriptrepo"
	"github.com/mliu/tubebrief/pkg/logger"
	"github.com/mliu/tubebrief/pkg/metrics"
)

const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
)

func main() {
	var (
		audioPath   = flag.String("audio", "", "path to an audio file to transcribe")
		doSummarize = flag.Bool("summarize", false, "summarize the fetched or transcribed text")
		stylesFlag  = flag.String("styles", "", "comma separated summary styles (default: all, implies -summarize)")
		doList      = flag.Bool("list", false, "list stored transcripts")
		listType    = flag.String("list-type", "", "filter the listing by source type (youtube|audio)")
		limit       = flag.Int("limit", 20, "maximum number of listed transcripts")
		doTitle     = flag.Bool("title", false, "generate a title for the processed source")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [youtube-url]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if !*verbose {
		os.Setenv("LOG_LEVEL", "error")
	}
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		fatal("load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(cfg, log)
	if err != nil {
		fatal("%v", err)
	}

	opts := outputOptions{
		summarize: *doSummarize || *stylesFlag != "",
		styles:    *stylesFlag,
		title:     *doTitle,
	}

	switch {
	case *doList:
		runList(ctx, svc, transcript.SourceType(*listType), *limit)
	case *audioPath != "":
		runAudio(ctx, svc, *audioPath, opts)
	case flag.NArg() == 1:
		runURL(ctx, svc, flag.Arg(0), opts)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

type outputOptions struct {
	summarize bool
	styles    string
	title     bool
}

func buildService(cfg *config.Config, log *slog.Logger) (*transcript.Service, error) {
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}
	profiles, err := cfg.BudgetProfiles()
	if err != nil {
		return nil, err
	}
	summarizer := summary.NewService(summary.Config{
		Model:         cfg.LLM.Model,
		TitleModel:    cfg.LLM.TitleModel,
		Temperature:   cfg.LLM.Temperature,
		ChunkTokens:   cfg.Summary.ChunkTokens,
		MaxConcurrent: cfg.Summary.MaxConcurrent,
		Profiles:      profiles,
	}, client, log)

	return transcript.NewService(
		transcript.Config{
			WhisperModel:   cfg.LLM.WhisperModel,
			MaxUploadBytes: cfg.Upload.MaxBytes,
		},
		transcriptrepo.NewMemoryRepository(),
		captions.NewYouTubeFetcher(cfg.Captions.BaseURL),
		audiostore.NewMemoryStore(),
		summarycache.NewMemoryCache(),
		embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel),
		client,
		summarizer,
		log,
	), nil
}

func runURL(ctx context.Context, svc *transcript.Service, rawURL string, opts outputOptions) {
	record, err := svc.GetOrFetch(ctx, rawURL)
	if err != nil {
		fatal("fetch transcript: %v", err)
	}
	fmt.Printf("%s%sTranscript%s %s (%d chars)\n", colorBold, colorCyan, colorReset, record.SourceID, len(record.Text))
	printResults(ctx, svc, record, opts)
}

func runAudio(ctx context.Context, svc *transcript.Service, path string, opts outputOptions) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read audio file: %v", err)
	}
	record, err := svc.IngestAudio(ctx, filepath.Base(path), data)
	if err != nil {
		fatal("transcribe audio: %v", err)
	}
	fmt.Printf("%s%sTranscribed%s %s (%.1fs of audio, %d chars)\n",
		colorBold, colorCyan, colorReset, record.OriginalFilename, record.SourceDuration, len(record.Text))
	printResults(ctx, svc, record, opts)
}

func printResults(ctx context.Context, svc *transcript.Service, record *transcript.Record, opts outputOptions) {
	if !opts.summarize {
		fmt.Printf("\n%s\n", record.Text)
	} else {
		styles, err := summary.ParseStyles(splitStyles(opts.styles))
		if err != nil {
			fatal("%v", err)
		}

		result, err := svc.SummarizeSource(ctx, record.SourceID, styles, false)
		if err != nil && len(result) == 0 {
			fatal("summarize: %v", err)
		}

		encoder, encErr := metrics.NewEncoder("")
		ordered := make([]summary.Style, 0, len(result))
		for style := range result {
			ordered = append(ordered, style)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

		for _, style := range ordered {
			content := result[style]
			fmt.Printf("\n%s%s=== %s ===%s\n%s\n", colorBold, colorYellow, style, colorReset, content)
			if encErr == nil {
				fmt.Printf("%s(%d tokens)%s\n", colorGreen, encoder.Count(content), colorReset)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nsome styles failed: %v\n", err)
		}
	}

	if opts.title {
		title, err := svc.GenerateTitle(ctx, record.SourceID)
		if err != nil {
			fatal("generate title: %v", err)
		}
		fmt.Printf("\n%s%sTitle:%s %s\n", colorBold, colorGreen, colorReset, title)
	}
}

func runList(ctx context.Context, svc *transcript.Service, sourceType transcript.SourceType, limit int) {
	records, err := svc.List(ctx, sourceType, limit)
	if err != nil {
		fatal("list transcripts: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("no transcripts stored")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%sSOURCE\tTYPE\tTITLE\tCREATED%s\n", colorBold, colorReset)
	for _, record := range records {
		title := record.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", record.SourceID, record.SourceType, title, record.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func splitStyles(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
