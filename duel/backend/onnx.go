package backend

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig points at a classifier exported to ONNX (for example with
// skl2onnx, zipmap disabled) and the vocabulary it was trained with.
type ONNXConfig struct {
	SharedLibraryPath string `yaml:"shared_library_path" env:"ORT_LIBRARY"`
	ModelPath         string `yaml:"model_path" env:"MODEL_PATH"`
	InputName         string `yaml:"input_name" env:"MODEL_INPUT"`
	OutputName        string `yaml:"output_name" env:"MODEL_OUTPUT"`
	// SuccessClass is the column of the probability output holding P(success).
	// Nil means column 1.
	SuccessClass *int `yaml:"success_class" env:"MODEL_SUCCESS_CLASS"`
}

// ApplyDefaults fills the skl2onnx tensor names.
func (c *ONNXConfig) ApplyDefaults() {
	if c.InputName == "" {
		c.InputName = "float_input"
	}
	if c.OutputName == "" {
		c.OutputName = "probabilities"
	}
	if c.SuccessClass == nil {
		class := 1
		c.SuccessClass = &class
	}
}

// ONNXBackend runs the classifier on [systemIdx, playerIdx] feature rows.
// A single session is reused; runs are serialized and memoized per pair.
type ONNXBackend struct {
	*Vocabulary

	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	cache   map[[2]int]float64
	class   int
	ownsEnv bool
}

func NewONNXBackend(vocab *Vocabulary, cfg ONNXConfig) (*ONNXBackend, error) {
	if vocab == nil {
		return nil, ErrEmptyVocabulary
	}
	cfg.ApplyDefaults()
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, errors.New("onnx model path is required")
	}
	if class := *cfg.SuccessClass; class < 0 || class > 1 {
		return nil, fmt.Errorf("success class %d outside binary output", class)
	}

	ownsEnv := false
	if !ort.IsInitialized() {
		if cfg.SharedLibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("init onnxruntime: %w", err)
		}
		ownsEnv = true
	}

	b := &ONNXBackend{
		Vocabulary: vocab,
		cache:      make(map[[2]int]float64),
		class:      *cfg.SuccessClass,
		ownsEnv:    ownsEnv,
	}
	input, err := ort.NewTensor(ort.NewShape(1, 2), []float32{0, 0})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	b.input = input
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	b.output = output

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("load onnx model %s: %w", cfg.ModelPath, err)
	}
	b.session = session
	return b, nil
}

func (b *ONNXBackend) PredictProbability(systemIdx, playerIdx int) (float64, error) {
	if systemIdx < 0 || systemIdx >= len(b.SystemWords) || playerIdx < 0 || playerIdx >= len(b.PlayerWords) {
		return 0, fmt.Errorf("index pair (%d,%d) out of vocabulary range", systemIdx, playerIdx)
	}
	key := [2]int{systemIdx, playerIdx}

	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.cache[key]; ok {
		return p, nil
	}
	if b.session == nil {
		return 0, errors.New("onnx backend is closed")
	}
	in := b.input.GetData()
	in[0] = float32(systemIdx)
	in[1] = float32(playerIdx)
	if err := b.session.Run(); err != nil {
		return 0, fmt.Errorf("run onnx model: %w", err)
	}
	p := float64(b.output.GetData()[b.class])
	b.cache[key] = p
	return p, nil
}

// Close releases the session, tensors and, if this backend created it, the
// onnxruntime environment.
func (b *ONNXBackend) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	if b.session != nil {
		errs = append(errs, b.session.Destroy())
		b.session = nil
	}
	if b.input != nil {
		errs = append(errs, b.input.Destroy())
		b.input = nil
	}
	if b.output != nil {
		errs = append(errs, b.output.Destroy())
		b.output = nil
	}
	if b.ownsEnv {
		errs = append(errs, ort.DestroyEnvironment())
		b.ownsEnv = false
	}
	b.cache = nil
	return errors.Join(errs...)
}
