// Command match-cli runs one match from the command line: an image file or
// a raw transcript in, the match report as JSON out.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/skinscan/skinscan/pkg/skinscan"
	"github.com/skinscan/skinscan/pkg/skinscan/config"
	"github.com/skinscan/skinscan/pkg/skinscan/nlp/onnx"
	"github.com/skinscan/skinscan/pkg/skinscan/ocr/tesseract"
	"github.com/skinscan/skinscan/pkg/skinscan/report"
	"github.com/skinscan/skinscan/pkg/skinscan/store/sqlite"
)

func main() {
	var (
		dbPath       = flag.String("db", "", "SQLite catalog database (required)")
		imagePath    = flag.String("image", "", "Label photo to match")
		text         = flag.String("text", "", "Raw transcript to match (instead of --image)")
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
	if (*imagePath == "") == (*text == "") {
		log.Fatal("exactly one of --image or --text required")
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

	ctx := context.Background()
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

	var rep report.Report
	if *imagePath != "" {
		image, err := os.ReadFile(*imagePath)
		if err != nil {
			log.Fatalf("read image: %v", err)
		}
		_, rep, err = matcher.MatchImageReport(ctx, image)
		if err != nil {
			log.Fatalf("match: %v", err)
		}
	} else {
		_, rep, err = matcher.MatchTextReport(ctx, *text)
		if err != nil {
			log.Fatalf("match: %v", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}
