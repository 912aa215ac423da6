package render

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/utils"
)

// DefaultFrameRate is the loop rate used when none is configured.
const DefaultFrameRate = 30

// FrameSink is handed the segments after every frame.
type FrameSink func(ctx context.Context, segments []Segment)

// LoopConfig configures a Loop.
type LoopConfig struct {
	Arm       arm.Arm
	Segments  *SegmentSet
	FrameRate int
	Clock     clock.Clock
	Sink      FrameSink
	Logger    logging.Logger
}

// Loop snapshots the arm on every tick, solves its pose and applies it to the segments.
type Loop struct {
	conf    LoopConfig
	workers utils.StoppableWorkers
}

// NewLoop starts a frame loop. Stop it with Close.
func NewLoop(conf LoopConfig) *Loop {
	if conf.FrameRate <= 0 {
		conf.FrameRate = DefaultFrameRate
	}
	if conf.Clock == nil {
		conf.Clock = clock.New()
	}
	if conf.Segments == nil {
		conf.Segments = NewSegmentSet()
	}
	if conf.Logger == nil {
		conf.Logger = logging.NewLogger("render")
	}
	l := &Loop{conf: conf}
	l.workers = utils.NewStoppableWorkers(l.run)
	return l
}

// Interval is the time between frames.
func (l *Loop) Interval() time.Duration {
	return time.Second / time.Duration(l.conf.FrameRate)
}

// Segments returns the segments the loop writes to.
func (l *Loop) Segments() *SegmentSet {
	return l.conf.Segments
}

func (l *Loop) run(ctx context.Context) {
	ticker := l.conf.Clock.Ticker(l.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.frame(ctx); err != nil && ctx.Err() == nil {
				l.conf.Logger.Warnw("frame failed", "error", err)
			}
		}
	}
}

func (l *Loop) frame(ctx context.Context) error {
	poses, err := l.conf.Arm.SegmentPoses(ctx)
	if err != nil {
		return err
	}
	if err := l.conf.Segments.Apply(poses); err != nil {
		return err
	}
	if l.conf.Sink != nil {
		l.conf.Sink(ctx, l.conf.Segments.Snapshot())
	}
	return nil
}

// Close stops the loop and waits for the frame in progress.
func (l *Loop) Close() {
	l.workers.Stop()
}
