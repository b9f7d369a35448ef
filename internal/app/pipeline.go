package app

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/touchless/internal/detector"
	"github.com/ayusman/touchless/internal/kiosk"
	"github.com/ayusman/touchless/internal/presence"
)

// Run opens the camera and processes frames until ctx is done. A camera
// that cannot be opened or read ends the loop with ErrFrameSource; the
// camera is closed on every return.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrFrameSource, err)
	}
	defer a.camera.Close()

	a.logger.Info("frame loop started", zap.Int("fps", a.camera.FPS()))

	for {
		started := time.Now()
		if ctx.Err() != nil {
			a.logger.Info("frame loop stopped")
			return nil
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.logger.Error("frame read failed", zap.Error(err))
			return fmt.Errorf("%w: %w", ErrFrameSource, err)
		}
		a.processFrame(frame, a.config.Now())
		frame.Close()

		// Device cameras block in ReadFrame; pacing matters for sources
		// that deliver instantly.
		if fps := a.camera.FPS(); fps > 0 {
			wait := time.Second/time.Duration(fps) - time.Since(started)
			if wait > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(wait):
				}
			}
		}
	}
}

// processFrame runs one iteration of the loop on frame.
func (a *App) processFrame(frame *gocv.Mat, now time.Time) {
	a.frameIndex++
	a.publishPreview(frame)

	if !a.IsEnabled() {
		a.pause(now)
		return
	}

	attract := a.orch.Mode() == kiosk.ModeAttract
	analyze := true
	if attract && a.config.Gate != nil {
		analyze = a.config.Gate.Observe(frame, now)
	}

	var hand *detector.HandLandmarks
	if analyze && a.config.Hands != nil {
		hands, err := a.config.Hands.Detect(frame)
		if err != nil {
			a.logger.Debug("hand detection failed", zap.Error(err))
		} else if len(hands) > 0 {
			hand = &hands[0]
		}
	}
	result := a.engine.Process(hand, image.Pt(frame.Cols(), frame.Rows()))

	in := kiosk.Input{
		Now:     now,
		Cursor:  result.Cursor,
		Gesture: result.Gesture,
	}

	var wakeProgress float64
	if attract {
		if p := a.config.Presence; p != nil {
			if analyze {
				in.Wake = p.Update(frame, now) == presence.EventWake
			} else {
				p.Observe(false, now)
			}
			wakeProgress = p.WakeProgress(now)
		}
	} else if a.supervisor != nil {
		in.Active = a.supervisor.Active(result.Cursor.Detected, false, a.frameIndex, frame)
	} else {
		in.Active = result.Cursor.Detected
	}

	out := a.orch.Step(in)
	if out.Changed {
		a.modeChanged(attract, out.Mode, now)
	}

	a.publish(Snapshot{
		Session:      a.session,
		Frame:        a.frameIndex,
		Time:         now,
		Enabled:      true,
		Mode:         out.Mode,
		Game:         out.Game,
		Cursor:       result.Cursor,
		Gesture:      result.Gesture,
		WakeProgress: wakeProgress,
		View:         out.View,
	})
}

func (a *App) modeChanged(wasAttract bool, mode kiosk.Mode, now time.Time) {
	switch {
	case wasAttract && mode != kiosk.ModeAttract:
		a.session = newSession()
		a.logger.Info("session started", zap.String("session", a.session))
		if a.config.Gate != nil {
			a.config.Gate.Force(now)
		}
	case mode == kiosk.ModeAttract:
		a.logger.Info("session ended", zap.String("session", a.session))
		a.session = ""
		a.engine.Reset()
		if a.config.Presence != nil {
			a.config.Presence.Reset()
		}
	}
}

// pause keeps the kiosk on the attract screen while interaction is off.
func (a *App) pause(now time.Time) {
	if a.orch.Mode() != kiosk.ModeAttract {
		a.orch.ForceAttract(now)
		a.modeChanged(false, kiosk.ModeAttract, now)
	}
	a.publish(Snapshot{
		Frame: a.frameIndex,
		Time:  now,
		Mode:  kiosk.ModeAttract,
	})
}

func (a *App) publishPreview(frame *gocv.Mat) {
	sink := a.config.Frames
	if sink == nil || !sink.Wanted() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		a.logger.Debug("encode preview", zap.Error(err))
		return
	}
	jpeg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()
	sink.Publish(jpeg)
}
