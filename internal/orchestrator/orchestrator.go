package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/valpere/shapetran/internal/chunker"
	"github.com/valpere/shapetran/internal/formatter"
	"github.com/valpere/shapetran/internal/languages"
	"github.com/valpere/shapetran/internal/postprocess"
	"github.com/valpere/shapetran/internal/translator"
)

type OrchestratorConfig struct {
	// MaxInputLength caps the flattened text sent to the backend, in
	// characters. Zero disables the cap.
	MaxInputLength int
	// Timeout bounds model loading plus generation. Zero waits forever.
	Timeout time.Duration
	// SourceLang is recorded with cached translations; "auto" or "" when unknown.
	SourceLang string
}

// Memory caches raw backend output keyed by the flattened text that was
// sent. Layout is not part of the key; every hit is restored against the
// layout of the request that found it.
type Memory interface {
	Lookup(ctx context.Context, sourceText, sourceLang, targetLang, backend string) (string, bool, error)
	Remember(ctx context.Context, sourceText, sourceLang, targetLang, backend, text string) error
}

// LabelSource supplies user-defined structural label translations that
// take precedence over the built-in table of the target language.
type LabelSource interface {
	Labels(ctx context.Context, targetLang string) (formatter.Labels, error)
}

// Checker vets backend output against the flattened text it was asked to
// translate. A non-nil error is reported as a warning only.
type Checker interface {
	Check(source, output, targetLang string) error
}

type Option func(*Orchestrator)

func WithMemory(m Memory) Option {
	return func(o *Orchestrator) { o.memory = m }
}

func WithLabelSource(s LabelSource) Option {
	return func(o *Orchestrator) { o.labels = s }
}

func WithChecker(c Checker) Option {
	return func(o *Orchestrator) { o.checker = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// Orchestrator runs at most one translation at a time: Submit refuses new
// work with ErrBusy until the running task reaches a terminal state.
type Orchestrator struct {
	backend translator.Backend
	config  OrchestratorConfig
	memory  Memory
	labels  LabelSource
	checker Checker
	logger  *slog.Logger

	busy   atomic.Bool
	loaded atomic.Bool
}

func New(backend translator.Backend, config OrchestratorConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		config:  config,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Busy reports whether a task is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Submit validates the request and starts translating text into
// targetLang on a separate goroutine. Empty input and unsupported
// languages are rejected here and never produce a task.
func (o *Orchestrator) Submit(ctx context.Context, text, targetLang string) (*Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &TranslationError{Kind: EmptyInput, Message: "nothing to translate"}
	}

	lang, err := languages.Lookup(targetLang)
	if err != nil {
		return nil, err
	}

	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	task := newTask()
	go func() {
		result := o.run(ctx, task, text, lang)
		o.busy.Store(false)
		task.finish(result)
	}()
	return task, nil
}

// Translate is the blocking form of Submit.
func (o *Orchestrator) Translate(ctx context.Context, text, targetLang string) (Result, error) {
	task, err := o.Submit(ctx, text, targetLang)
	if err != nil {
		return Result{}, err
	}
	return task.Wait(), nil
}

func (o *Orchestrator) run(ctx context.Context, task *Task, text string, lang languages.Language) Result {
	start := time.Now()
	result := Result{
		Backend:    o.backend.Name(),
		SourceLang: o.sourceLang(),
		TargetLang: lang.Code,
	}
	log := o.logger.With("backend", result.Backend, "target", lang.Code)

	fail := func(err error) Result {
		task.report(ProgressFailed)
		result.State = Failed
		result.Err = err
		result.Text = FormatFailure(err)
		result.Latency = time.Since(start)
		log.Warn("translation failed", "error", err, "latency", result.Latency)
		return result
	}

	// Preparing
	task.setState(Preparing)
	flat, meta := formatter.Extract(text)
	capped, truncated := chunker.Truncate(flat, o.config.MaxInputLength)
	if truncated {
		result.Truncated = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("input truncated to %d characters", o.config.MaxInputLength))
		log.Warn("input exceeds maximum length, truncating",
			"length", len([]rune(flat)), "max", o.config.MaxInputLength)
	}
	directive := translator.BuildDirective(lang.Code, capped)
	log.Debug("prepared directive", "lines", len(meta.OriginalLines), "content_lines", meta.ContentLines(), "chars", len([]rune(capped)))

	if cached, ok := o.lookup(ctx, capped, lang.Code); ok {
		result.Raw = cached
		result.Text, result.Tier = o.restore(ctx, lang, cached, meta)
		task.report(ProgressDone)
		result.State = Succeeded
		result.Cached = true
		result.Latency = time.Since(start)
		log.Info("served from translation memory", "tier", result.Tier.String())
		return result
	}

	// BackendInvoked
	task.setState(BackendInvoked)
	callCtx := ctx
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	task.report(ProgressLoading)
	if err := o.load(callCtx); err != nil {
		return fail(&TranslationError{Kind: BackendError, Message: "model load failed", Cause: err})
	}
	task.report(ProgressModel)
	task.report(ProgressPrepared)

	task.report(ProgressSubmitted)
	res, err := o.generate(callCtx, directive)
	task.report(ProgressGenerated)
	if err != nil {
		return fail(&TranslationError{Kind: BackendError, Message: "generation failed", Cause: err})
	}

	output := strings.TrimSpace(postprocess.StripDirective(res.TranslatedText))
	if output == "" {
		return fail(&TranslationError{Kind: EmptyResult, Message: "backend returned no text"})
	}
	result.Raw = output

	if o.checker != nil {
		if err := o.checker.Check(capped, output, lang.Code); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			log.Warn("output language check failed", "error", err)
		}
	}

	restored, tier := o.restore(ctx, lang, output, meta)
	result.Tier = tier
	log.Debug("restored layout", "tier", tier.String())

	o.remember(ctx, capped, lang.Code, output)

	task.report(ProgressDone)
	result.State = Succeeded
	result.Text = restored
	result.Latency = time.Since(start)
	log.Info("translation complete", "latency", result.Latency, "tier", tier.String())
	return result
}

func (o *Orchestrator) sourceLang() string {
	if o.config.SourceLang == "" {
		return "auto"
	}
	return o.config.SourceLang
}

// load runs the backend's Loader once per Orchestrator; a failed load is
// retried on the next request.
func (o *Orchestrator) load(ctx context.Context) (err error) {
	loader, ok := o.backend.(translator.Loader)
	if !ok || o.loaded.Load() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during load: %v", r)
		}
	}()
	if err := loader.Load(ctx); err != nil {
		return err
	}
	o.loaded.Store(true)
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, directive string) (res *translator.ServiceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic during generation: %v", r)
		}
	}()
	res, err = o.backend.Generate(ctx, directive)
	if err == nil && res == nil {
		err = fmt.Errorf("backend returned no result")
	}
	return res, err
}

// restore re-shapes raw backend output to the layout of the request. Labels
// are resolved on every call so cached output picks up label changes.
func (o *Orchestrator) restore(ctx context.Context, lang languages.Language, raw string, meta formatter.Metadata) (string, formatter.Tier) {
	f := formatter.New(formatter.WithLabels(o.labelsFor(ctx, lang)))
	return f.RestoreWithTier(raw, meta)
}

func (o *Orchestrator) labelsFor(ctx context.Context, lang languages.Language) formatter.Labels {
	labels := lang.Labels
	if o.labels == nil {
		return labels
	}
	custom, err := o.labels.Labels(ctx, lang.Code)
	if err != nil {
		o.logger.Warn("failed to load custom labels", "target", lang.Code, "error", err)
		return labels
	}
	return labels.Merge(custom)
}

func (o *Orchestrator) lookup(ctx context.Context, flat, targetLang string) (string, bool) {
	if o.memory == nil {
		return "", false
	}
	cached, found, err := o.memory.Lookup(ctx, flat, o.sourceLang(), targetLang, o.backend.Name())
	if err != nil {
		o.logger.Warn("translation memory lookup failed", "error", err)
		return "", false
	}
	return cached, found
}

func (o *Orchestrator) remember(ctx context.Context, flat, targetLang, raw string) {
	if o.memory == nil {
		return
	}
	if err := o.memory.Remember(ctx, flat, o.sourceLang(), targetLang, o.backend.Name(), raw); err != nil {
		o.logger.Warn("failed to save translation memory", "error", err)
	}
}

// CheckLength applies the input length advisory: near reports text past
// 80% of limit, and err is an InputTooLong error past limit. A limit of zero
// disables both.
func CheckLength(text string, limit int) (near bool, err error) {
	if limit <= 0 {
		return false, nil
	}
	n := len([]rune(text))
	if n > limit {
		return true, &TranslationError{
			Kind:    InputTooLong,
			Message: fmt.Sprintf("%d characters, maximum is %d", n, limit),
		}
	}
	return n*5 > limit*4, nil
}
