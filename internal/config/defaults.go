package config

import "runtime"

const (
	DefaultFPS          = 30
	DefaultCRF          = 23
	DefaultAssetTimeout = 10.0
	DefaultPDFDPI       = 150
	DefaultSink         = "ffmpeg"
)

// Default returns the settings used when no file or flag overrides them.
func Default() Config {
	return Config{
		FPS:          DefaultFPS,
		Format:       FormatLandscape,
		Quality:      QualityHD,
		Codec:        CodecH264,
		CRF:          DefaultCRF,
		Workers:      runtime.NumCPU(),
		Sink:         DefaultSink,
		AssetTimeout: DefaultAssetTimeout,
		PDFDPI:       DefaultPDFDPI,
	}
}
