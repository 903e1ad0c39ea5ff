// ABOUTME: In-process training backend that generates the dataset and runs the CART trainer directly.
// ABOUTME: Used by the web server's /api/train handler and by the TUI when no remote URL is configured.
package trainapi

import (
	"context"
	"fmt"

	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

// Local trains in-process.
type Local struct {
	Options dataset.Options
}

// Train implements playback.Trainer.
func (l Local) Train(ctx context.Context, req playback.Request) (dtree.History, error) {
	resp, err := l.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.History, nil
}

// Run trains and returns a full success envelope including the raw data.
func (l Local) Run(ctx context.Context, req playback.Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	ds, err := dataset.Generate(req.Dataset, l.Options)
	if err != nil {
		return Response{}, fmt.Errorf("generate dataset: %w", err)
	}
	tr, err := dtree.NewTrainer(req.Params)
	if err != nil {
		return Response{}, err
	}
	h, err := tr.Fit(ds.X, ds.Y)
	if err != nil {
		return Response{}, fmt.Errorf("fit: %w", err)
	}

	return Response{
		Status:  StatusSuccess,
		History: h,
		Data:    &Data{X: ds.X, Y: ds.Y},
	}, nil
}
