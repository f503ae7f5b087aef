package port

import (
	"context"

	"ogarx/internal/domain"
)

// Rasterizer turns a raw document into ordered page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc domain.RawDocument) ([]domain.PageImage, error)
}

// ModelInvoker sends one page image and a prompt to a vision-capable chat
// model and returns its raw text reply. One call is one network round-trip.
type ModelInvoker interface {
	Name() string
	Invoke(ctx context.Context, page domain.PageImage, prompt string) (domain.ModelReply, error)
}
