// Package detector wraps the perception capabilities the kiosk consumes:
// hand landmarks from a MediaPipe subprocess and face boxes from YuNet.
package detector

import "gocv.io/x/gocv"

// HandDetector returns the landmarks of the hands visible in a frame.
type HandDetector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// FaceDetector returns the faces visible in a frame.
type FaceDetector interface {
	Detect(frame *gocv.Mat) ([]FaceBox, error)
	Close() error
}

// FaceBox is a face bounding box normalized to the frame (0-1).
type FaceBox struct {
	X, Y       float64
	W, H       float64
	Confidence float64
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to track. The kiosk follows one.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Script is the path of the MediaPipe service. Empty means search the
	// usual locations.
	Script string

	// Python is the interpreter. Empty means a venv next to the binary or python3.
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}

// FaceConfig configures the YuNet face detector.
type FaceConfig struct {
	ModelPath        string
	ConfidenceThresh float64
	InputWidth       int
	InputHeight      int
}

// DefaultFaceConfig returns the YuNet defaults.
func DefaultFaceConfig() FaceConfig {
	return FaceConfig{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}
