package errors

// ErrorFormat selects the JSON shape of an error response.
type ErrorFormat string

const (
	// FormatSimple is {"error": "message"}, the shape the web client expects.
	FormatSimple ErrorFormat = "simple"
	// FormatDetailed nests message, type and code under "error".
	FormatDetailed ErrorFormat = "detailed"
)

// APIError is an error that is reported before a stream starts.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	Type       string
	Details    map[string]interface{}
}

// SimpleError mirrors the web client's error envelope.
type SimpleError struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// DetailedError nests the error fields.
type DetailedError struct {
	Error struct {
		Message string                 `json:"message"`
		Type    string                 `json:"type"`
		Code    string                 `json:"code,omitempty"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}
