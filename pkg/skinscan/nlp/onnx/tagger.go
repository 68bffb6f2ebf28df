package onnx

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/sugarme/tokenizer"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/skinscan/skinscan/pkg/skinscan/nlp"
)

// defaultLabels is the CoNLL-2003 BIO label order used by the stock
// BERT NER checkpoints.
var defaultLabels = []string{
	"O",
	"B-MISC", "I-MISC",
	"B-PER", "I-PER",
	"B-ORG", "I-ORG",
	"B-LOC", "I-LOC",
}

// Tagger is a named-entity tagger backed by a BERT token-classification
// ONNX model. Word pieces are merged back into surface words and adjacent
// tokens of one entity are grouped into a single span whose confidence is
// the mean of its token probabilities.
type Tagger struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	labels  []string
	maxLen  int
}

var _ nlp.Tagger = (*Tagger)(nil)

var taggerInputNames = []string{"input_ids", "attention_mask", "token_type_ids"}

// NewTagger loads the token-classification model and its tokenizer.
func NewTagger(cfg Config) (*Tagger, error) {
	if err := ensureRuntime(cfg.SharedLibraryPath); err != nil {
		return nil, fmt.Errorf("init onnx runtime: %w", err)
	}
	tk, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, err
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.TaggerModelPath,
		taggerInputNames, []string{"logits"}, nil)
	if err != nil {
		return nil, fmt.Errorf("open tagger model %s: %w", cfg.TaggerModelPath, err)
	}
	labels := cfg.TaggerLabels
	if len(labels) == 0 {
		labels = defaultLabels
	}
	maxLen := cfg.MaxSeqLen
	if maxLen <= 0 {
		maxLen = defaultMaxSeqLen
	}
	return &Tagger{session: session, tk: tk, labels: labels, maxLen: maxLen}, nil
}

// Close releases the session.
func (t *Tagger) Close() error {
	return t.session.Destroy()
}

// Tag classifies each token of text and returns the grouped entity spans.
func (t *Tagger) Tag(ctx context.Context, text string) ([]nlp.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := encodeText(t.tk, text, t.maxLen)
	if err != nil {
		return nil, err
	}
	if len(in.ids) == 0 {
		return nil, nil
	}

	t.mu.Lock()
	out, err := run(t.session, in)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("unexpected logits shape %v", shape)
	}
	seqLen := int(shape[1])
	classes := int(shape[2])
	data := out.GetData()

	var spans []nlp.Span
	var cur *spanBuilder
	flush := func() {
		if cur != nil {
			spans = append(spans, cur.span())
			cur = nil
		}
	}

	for pos := 0; pos < seqLen && pos < len(in.tokens); pos++ {
		tok := in.tokens[pos]
		if in.mask[pos] == 0 || isSpecialToken(tok) {
			flush()
			continue
		}
		idx, prob := argmaxSoftmax(data[pos*classes : (pos+1)*classes])
		label := "O"
		if idx < len(t.labels) {
			label = t.labels[idx]
		}
		if label == "O" {
			// Continuation word pieces inherit the open span even when the
			// model tags them O, keeping surface words intact.
			if cur != nil && strings.HasPrefix(tok, "##") {
				cur.extend(tok, prob)
				continue
			}
			flush()
			continue
		}
		prefix, entity := splitBIO(label)
		switch {
		case cur == nil:
			cur = newSpanBuilder(entity, tok, prob)
		case prefix == "B" && !strings.HasPrefix(tok, "##"):
			flush()
			cur = newSpanBuilder(entity, tok, prob)
		case cur.entity != entity:
			flush()
			cur = newSpanBuilder(entity, tok, prob)
		default:
			cur.extend(tok, prob)
		}
	}
	flush()
	return spans, nil
}

// spanBuilder accumulates word pieces of one entity mention.
type spanBuilder struct {
	entity string
	text   strings.Builder
	sum    float64
	n      int
}

func newSpanBuilder(entity, tok string, prob float64) *spanBuilder {
	b := &spanBuilder{entity: entity}
	b.text.WriteString(strings.TrimPrefix(tok, "##"))
	b.sum = prob
	b.n = 1
	return b
}

func (b *spanBuilder) extend(tok string, prob float64) {
	if strings.HasPrefix(tok, "##") {
		b.text.WriteString(strings.TrimPrefix(tok, "##"))
	} else {
		b.text.WriteByte(' ')
		b.text.WriteString(tok)
	}
	b.sum += prob
	b.n++
}

func (b *spanBuilder) span() nlp.Span {
	return nlp.Span{
		Text:       b.text.String(),
		Label:      b.entity,
		Confidence: b.sum / float64(b.n),
	}
}

func splitBIO(label string) (prefix, entity string) {
	if i := strings.IndexByte(label, '-'); i > 0 {
		return label[:i], label[i+1:]
	}
	return "", label
}

// argmaxSoftmax returns the winning class and its softmax probability.
func argmaxSoftmax(logits []float32) (int, float64) {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	var denom float64
	maxLogit := float64(logits[best])
	for _, v := range logits {
		denom += math.Exp(float64(v) - maxLogit)
	}
	return best, 1 / denom
}
