package sink

import (
	"context"

	"github.com/okian/autoapply/internal/domain/model"
)

// Nop discards every record. It is the default when no durable store is configured.
type Nop struct{}

// NewNop returns the discarding sink.
func NewNop() *Nop { return &Nop{} }

// Upsert implements Sink.
func (*Nop) Upsert(context.Context, model.RunRecord) error { return nil }

// Name implements Sink.
func (*Nop) Name() string { return "nop" }

// Close implements Sink.
func (*Nop) Close() error { return nil }
