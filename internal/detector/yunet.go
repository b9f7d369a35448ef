package detector

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// YuNetDetector implements FaceDetector with OpenCV's FaceDetectorYN.
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   FaceConfig
	inSize   image.Point
	mu       sync.Mutex
}

// NewYuNet loads the YuNet ONNX model.
func NewYuNet(cfg FaceConfig) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("face model: %w", err)
	}

	size := image.Pt(cfg.InputWidth, cfg.InputHeight)
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		size,
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
		inSize:   size,
	}, nil
}

// Detect returns the faces in frame, normalized to the frame size.
func (d *YuNetDetector) Detect(frame *gocv.Mat) ([]FaceBox, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	w, h := frame.Cols(), frame.Rows()
	if size := image.Pt(w, h); size != d.inSize {
		d.detector.SetInputSize(size)
		d.inSize = size
	}

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(*frame, &faces)

	// Rows: x, y, w, h, five landmark pairs, score.
	boxes := make([]FaceBox, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		boxes = append(boxes, FaceBox{
			X:          float64(faces.GetFloatAt(r, 0)) / float64(w),
			Y:          float64(faces.GetFloatAt(r, 1)) / float64(h),
			W:          float64(faces.GetFloatAt(r, 2)) / float64(w),
			H:          float64(faces.GetFloatAt(r, 3)) / float64(h),
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}
	return boxes, nil
}

// Close releases the detector resources.
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
