package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a HandDetector whose results are set by the test.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// MockFaceDetector is a FaceDetector whose results are set by the test.
type MockFaceDetector struct {
	mu    sync.Mutex
	faces []FaceBox
	err   error
	calls int
}

// NewMockFaceDetector creates a MockFaceDetector that sees nobody.
func NewMockFaceDetector() *MockFaceDetector {
	return &MockFaceDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockFaceDetector) SetFaces(faces []FaceBox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockFaceDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockFaceDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockFaceDetector) Detect(frame *gocv.Mat) ([]FaceBox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.faces, nil
}

func (m *MockFaceDetector) Close() error { return nil }

// CloseFace returns a face box tall enough to count as present.
func CloseFace() FaceBox {
	return FaceBox{X: 0.35, Y: 0.2, W: 0.3, H: 0.4, Confidence: 0.9}
}

// DistantFace returns a face box too small to count as present.
func DistantFace() FaceBox {
	return FaceBox{X: 0.45, Y: 0.3, W: 0.05, H: 0.06, Confidence: 0.8}
}

// PointingLandmarks returns a right hand pointing with the index tip at
// (x, y) and the thumb well away from it.
func PointingLandmarks(x, y float64) HandLandmarks {
	hand := HandLandmarks{Handedness: "Right", Score: 0.95}

	hand.Points[Wrist] = Point3D{X: x - 0.02, Y: y + 0.30}
	hand.Points[ThumbCMC] = Point3D{X: x + 0.04, Y: y + 0.26}
	hand.Points[ThumbMCP] = Point3D{X: x + 0.08, Y: y + 0.22}
	hand.Points[ThumbIP] = Point3D{X: x + 0.11, Y: y + 0.19}
	hand.Points[ThumbTip] = Point3D{X: x + 0.14, Y: y + 0.16}

	hand.Points[IndexMCP] = Point3D{X: x, Y: y + 0.18, Z: -0.01}
	hand.Points[IndexPIP] = Point3D{X: x, Y: y + 0.11, Z: -0.02}
	hand.Points[IndexDIP] = Point3D{X: x, Y: y + 0.05, Z: -0.02}
	hand.Points[IndexTip] = Point3D{X: x, Y: y, Z: -0.03}

	// Remaining fingers curled near the palm.
	for i, base := range []int{MiddleMCP, RingMCP, PinkyMCP} {
		off := float64(i+1) * 0.03
		hand.Points[base] = Point3D{X: x - off, Y: y + 0.19}
		hand.Points[base+1] = Point3D{X: x - off, Y: y + 0.16, Z: -0.03}
		hand.Points[base+2] = Point3D{X: x - off, Y: y + 0.18, Z: -0.03}
		hand.Points[base+3] = Point3D{X: x - off, Y: y + 0.21, Z: -0.02}
	}
	return hand
}

// PinchLandmarks returns PointingLandmarks with the thumb tip brought
// to within a few pixels of the index tip.
func PinchLandmarks(x, y float64) HandLandmarks {
	hand := PointingLandmarks(x, y)
	hand.Points[ThumbIP] = Point3D{X: x + 0.02, Y: y + 0.03}
	hand.Points[ThumbTip] = Point3D{X: x + 0.005, Y: y + 0.005}
	return hand
}
