// Package onnx implements the nlp boundaries with ONNX Runtime sessions:
// a mean-pooled sentence encoder (MiniLM-style) and a BERT token-classifier
// tagger. Models are loaded once at process start and the sessions are
// shared across requests; Run calls are serialized per session.
package onnx

import (
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config locates the runtime, models, and tokenizer on disk.
type Config struct {
	// SharedLibraryPath points at the onnxruntime shared library. Empty
	// uses the loader's default search path.
	SharedLibraryPath string
	// EncoderModelPath is the sentence-embedding model.
	EncoderModelPath string
	// TaggerModelPath is the token-classification model.
	TaggerModelPath string
	// TokenizerPath is the tokenizer.json shared by both models.
	TokenizerPath string
	// MaxSeqLen caps tokenized input length. Zero selects 256.
	MaxSeqLen int
	// TaggerLabels maps logit indices to label names. Empty selects the
	// standard CoNLL BIO label set.
	TaggerLabels []string
}

const defaultMaxSeqLen = 256

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// ensureRuntime initializes the ONNX runtime environment exactly once.
func ensureRuntime(libraryPath string) error {
	runtimeOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		runtimeErr = ort.InitializeEnvironment()
	})
	return runtimeErr
}

// encoded is a tokenized input ready to feed a BERT-family model.
type encoded struct {
	ids    []int64
	mask   []int64
	types  []int64
	tokens []string
}

func loadTokenizer(path string) (*tokenizer.Tokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return tk, nil
}

func encodeText(tk *tokenizer.Tokenizer, text string, maxLen int) (encoded, error) {
	en, err := tk.EncodeSingle(text, true)
	if err != nil {
		return encoded{}, fmt.Errorf("tokenize: %w", err)
	}
	n := len(en.Ids)
	if n > maxLen {
		n = maxLen
	}
	out := encoded{
		ids:    make([]int64, n),
		mask:   make([]int64, n),
		types:  make([]int64, n),
		tokens: make([]string, n),
	}
	for i := 0; i < n; i++ {
		out.ids[i] = int64(en.Ids[i])
		out.mask[i] = int64(en.AttentionMask[i])
		out.types[i] = int64(en.TypeIds[i])
		out.tokens[i] = en.Tokens[i]
	}
	return out, nil
}

// run feeds one encoded input through a session and returns the first
// output tensor. The caller owns the returned tensor and must Destroy it.
func run(session *ort.DynamicAdvancedSession, in encoded) (*ort.Tensor[float32], error) {
	shape := ort.NewShape(1, int64(len(in.ids)))

	idsTensor, err := ort.NewTensor(shape, in.ids)
	if err != nil {
		return nil, fmt.Errorf("input ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, in.mask)
	if err != nil {
		return nil, fmt.Errorf("attention mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typeTensor, err := ort.NewTensor(shape, in.types)
	if err != nil {
		return nil, fmt.Errorf("token type tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	inputs := []ort.Value{idsTensor, maskTensor, typeTensor}
	if err := session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	return tensor, nil
}

func isSpecialToken(tok string) bool {
	switch tok {
	case "[CLS]", "[SEP]", "[PAD]", "[UNK]", "<s>", "</s>", "<pad>":
		return true
	}
	return false
}
