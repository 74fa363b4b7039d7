package advisor

import (
	"context"

	"github.com/branchmove/branch-service/internal/branch"
)

// LocationStore is the read side of the branch dataset. FindByName must
// return an error wrapping branch.ErrLocationNotFound on a miss.
type LocationStore interface {
	FindAll(ctx context.Context) ([]branch.Location, error)
	FindByName(ctx context.Context, name string) (branch.Location, error)
}

// TextGenerator turns a prompt into free text. Implementations must honor
// ctx cancellation.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
