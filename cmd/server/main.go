// Command server runs the HTTP matching service.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/skinscan/skinscan/internal/httpapi"
	"github.com/skinscan/skinscan/pkg/skinscan"
	"github.com/skinscan/skinscan/pkg/skinscan/config"
	"github.com/skinscan/skinscan/pkg/skinscan/nlp/onnx"
	"github.com/skinscan/skinscan/pkg/skinscan/ocr/tesseract"
	"github.com/skinscan/skinscan/pkg/skinscan/store/sqlite"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "Listen address")
		dbPath       = flag.String("db", "", "SQLite catalog database (required)")
		configPath   = flag.String("config", "", "YAML config file (optional)")
		onnxLib      = flag.String("onnx-lib", "", "Path to the onnxruntime shared library")
		encoderModel = flag.String("encoder-model", "", "Sentence-embedding ONNX model (required)")
		taggerModel  = flag.String("tagger-model", "", "Token-classification ONNX model (required)")
		tokenizer    = flag.String("tokenizer", "", "tokenizer.json path (required)")
		ocrLangs     = flag.String("ocr-langs", "eng", "Tesseract language hints")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *encoderModel == "" || *taggerModel == "" || *tokenizer == "" {
		log.Fatal("--encoder-model, --tagger-model and --tokenizer required")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	modelCfg := onnx.Config{
		SharedLibraryPath: *onnxLib,
		EncoderModelPath:  *encoderModel,
		TaggerModelPath:   *taggerModel,
		TokenizerPath:     *tokenizer,
	}
	encoder, err := onnx.NewEncoder(modelCfg)
	if err != nil {
		log.Fatalf("load encoder: %v", err)
	}
	defer encoder.Close()
	tagger, err := onnx.NewTagger(modelCfg)
	if err != nil {
		log.Fatalf("load tagger: %v", err)
	}
	defer tagger.Close()

	matcher, err := skinscan.New(ctx, skinscan.Options{
		Store:   st,
		OCR:     tesseract.New(tesseract.WithLanguages(*ocrLangs)),
		Tagger:  tagger,
		Encoder: encoder,
		Config:  cfg,
	})
	if err != nil {
		log.Fatalf("build matcher: %v", err)
	}
	log.Printf("catalog loaded: %d products", matcher.CatalogSize())

	srv := &http.Server{
		Addr:    *addr,
		Handler: httpapi.NewRouter(matcher, st),
	}

	go func() {
		log.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
