package onnx

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/skinscan/skinscan/pkg/skinscan/nlp"
)

// Encoder is a sentence encoder backed by a MiniLM-style ONNX model.
// Token embeddings are mean-pooled over the attention mask and the
// resulting vector is L2-normalized, so Cosine reduces to a dot product.
type Encoder struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	maxLen  int
}

var _ nlp.Encoder = (*Encoder)(nil)

var encoderInputNames = []string{"input_ids", "attention_mask", "token_type_ids"}

// NewEncoder loads the embedding model and its tokenizer.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := ensureRuntime(cfg.SharedLibraryPath); err != nil {
		return nil, fmt.Errorf("init onnx runtime: %w", err)
	}
	tk, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, err
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.EncoderModelPath,
		encoderInputNames, []string{"last_hidden_state"}, nil)
	if err != nil {
		return nil, fmt.Errorf("open encoder model %s: %w", cfg.EncoderModelPath, err)
	}
	maxLen := cfg.MaxSeqLen
	if maxLen <= 0 {
		maxLen = defaultMaxSeqLen
	}
	return &Encoder{session: session, tk: tk, maxLen: maxLen}, nil
}

// Close releases the session.
func (e *Encoder) Close() error {
	return e.session.Destroy()
}

// Embed returns the normalized sentence vector for text.
func (e *Encoder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := encodeText(e.tk, text, e.maxLen)
	if err != nil {
		return nil, err
	}
	if len(in.ids) == 0 {
		return nil, fmt.Errorf("empty tokenization for %q", text)
	}

	e.mu.Lock()
	out, err := run(e.session, in)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("unexpected hidden state shape %v", shape)
	}
	seqLen := int(shape[1])
	hidden := int(shape[2])
	data := out.GetData()

	vec := make([]float32, hidden)
	var count float32
	for pos := 0; pos < seqLen && pos < len(in.mask); pos++ {
		if in.mask[pos] == 0 {
			continue
		}
		base := pos * hidden
		for d := 0; d < hidden; d++ {
			vec[d] += data[base+d]
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("attention mask is all zero for %q", text)
	}
	var norm float64
	for d := range vec {
		vec[d] /= count
		norm += float64(vec[d]) * float64(vec[d])
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for d := range vec {
			vec[d] = float32(float64(vec[d]) / norm)
		}
	}
	return vec, nil
}
