package constants

const (
	// StreamScannerInitialBufferSize is the initial line buffer for envelope readers (64KB).
	StreamScannerInitialBufferSize = 64 * 1024
	// StreamScannerMaxBufferSize caps a single envelope or agent event line (4MB).
	StreamScannerMaxBufferSize = 4 * 1024 * 1024
	// MaxStreamTextBytes bounds the text accepted by the ad-hoc stream routes.
	MaxStreamTextBytes = 1 << 20
	// MaxDiagramSourceBytes bounds a diagram submitted for repair or rendering.
	MaxDiagramSourceBytes = 256 * 1024
	// MaxRenderedSVGBytes bounds a renderer response body.
	MaxRenderedSVGBytes = 8 * 1024 * 1024
)
