package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvLogLevel    = "TOUCHLESS_LOG_LEVEL"
	EnvAddr        = "TOUCHLESS_HTTP_ADDR"
	EnvDBPath      = "TOUCHLESS_DB_PATH"
	EnvCameraID    = "TOUCHLESS_CAMERA_ID"
	EnvModels      = "TOUCHLESS_GEMINI_MODELS"
	EnvStaticDir   = "TOUCHLESS_STATIC_DIR"
	EnvFaceModel   = "TOUCHLESS_FACE_MODEL"
	EnvMediaPipePy = "TOUCHLESS_MEDIAPIPE_SCRIPT"
)

// ApplyEnv overrides fields from the environment. Unset variables leave the
// current value alone.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Content.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvStaticDir); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv(EnvFaceModel); v != "" {
		c.Detector.FaceModel = v
	}
	if v := os.Getenv(EnvMediaPipePy); v != "" {
		c.Detector.MediaPipeScript = v
	}
	if v := os.Getenv(EnvCameraID); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvCameraID, v)
		}
		c.Camera.DeviceID = id
	}
	if v := os.Getenv(EnvModels); v != "" {
		var models []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		c.Content.Models = models
	}
	return nil
}
