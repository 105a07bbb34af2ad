package translator

import (
	"context"
	"time"
)

// EchoBackend returns the directive unchanged, the way a seq2seq model
// sometimes repeats its prompt. It needs no model and is used for dry runs
// of the formatting pipeline.
type EchoBackend struct{}

func NewEchoBackend() *EchoBackend {
	return &EchoBackend{}
}

func (s *EchoBackend) Name() string {
	return "echo"
}

func (s *EchoBackend) Generate(ctx context.Context, directive string) (*ServiceResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return &ServiceResult{ServiceName: s.Name()}, err
	}
	return &ServiceResult{
		ServiceName:    s.Name(),
		TranslatedText: directive,
		Latency:        time.Since(start),
	}, nil
}
