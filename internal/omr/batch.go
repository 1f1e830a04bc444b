package omr

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Sheet is one input to GradeBatch.
type Sheet struct {
	// Name identifies the sheet in logs, e.g. its file path.
	Name string
	Data []byte
	Key  AnswerKey

	// Err records why Data could not be obtained, e.g. a failed file read.
	// Such a sheet is not graded; its Report carries Err.
	Err error
}

// GradeBatch grades independent sheets concurrently, at most concurrency at
// a time, and returns their reports in input order.
//
// Each sheet runs through Grade on its own. Sheets not yet started when ctx
// is cancelled get a Report whose Err wraps the context error.
func (p *Pipeline) GradeBatch(ctx context.Context, sheets []Sheet, concurrency int) []*Report {
	reports := make([]*Report, len(sheets))
	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				reports[i] = newReport().fail(errors.Wrapf(err, "sheet %q not graded", sheets[i].Name))
				return nil
			}
			if err := sheets[i].Err; err != nil {
				p.log.WithError(err).WithFields(logrus.Fields{"stage": "read", "sheet": sheets[i].Name}).Error("failed to read sheet")
				reports[i] = newReport().fail(err)
				return nil
			}
			reports[i] = p.Grade(ctx, sheets[i].Data, sheets[i].Key)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}
