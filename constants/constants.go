package constants

import (
	"os"
	"strings"
	"time"
)

func GetTableName() string {
	name := os.Getenv("JIANPU_TABLE")
	if name != "" {
		return name
	}
	return "jianpu-documents"
}

func GetDynamoEndpoint() string {
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

func GetRegion() string {
	region := os.Getenv("AWS_REGION")
	if region != "" {
		return region
	}
	return "localhost"
}

func GetPort() string {
	port := os.Getenv("PORT")
	if port != "" {
		return port
	}
	return "8080"
}

func GetAllowedOrigins() []string {
	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		return []string{"*"}
	}
	var res []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			res = append(res, o)
		}
	}
	return res
}

func GetLogLevel() string {
	return os.Getenv("LOG_LEVEL")
}

// middle C, the pitch of degree 1 at octave offset 0 in C
const ReferencePitch = 60

const (
	DefaultKeyIndex          = 0
	DefaultTempoBPM          = 120
	DefaultHorizontalSpacing = 40.0
	DefaultVerticalScale     = 10.0
)

// layout
const (
	CanvasPadding       = 30.0
	MinCanvasWidth      = 100.0
	VerticalPadding     = 40.0
	EmptyCanvasWidth    = 800.0
	EmptyCanvasHeight   = 200.0
	EmptyCanvasBaseline = 100.0
)

// live capture
const (
	MinClarity       = 0.9
	MinFrequency     = 60.0
	MaxFrequency     = 1500.0
	StabilityWindow  = 300 * time.Millisecond
	RefractoryPeriod = 400 * time.Millisecond
	FrameInterval    = 16 * time.Millisecond
)

const AutosaveDelay = 2 * time.Second

// how long recording waits after starting the reference cue
const CueLength = 3200 * time.Millisecond
