package pipeline

//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks

import (
	"context"

	"subfetch/internal/query"
	"subfetch/internal/subtitles"
	"subfetch/internal/subtitles/opensubtitles"
)

// Catalog is the session the pipeline searches through.
// *opensubtitles.Session satisfies it.
type Catalog interface {
	Login(ctx context.Context) error
	Search(ctx context.Context, req query.Request) ([]subtitles.Candidate, error)
	Logout(ctx context.Context) error
	State() opensubtitles.State
}

var _ Catalog = (*opensubtitles.Session)(nil)
