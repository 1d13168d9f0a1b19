// Package types defines core data types and enums for the LaTeX exercise corrector.
package types

import "fmt"

// Config is the application configuration, stored as JSON.
type Config struct {
	AIProvider    string `json:"ai_provider" mapstructure:"ai_provider"` // "openai" or "copilot"
	OpenAIAPIKey  string `json:"openai_api_key" mapstructure:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url" mapstructure:"openai_base_url"` // base URL of an OpenAI-compatible API
	OpenAIModel   string `json:"openai_model" mapstructure:"openai_model"`
	// GitHub Models (copilot provider)
	GitHubToken    string `json:"github_token" mapstructure:"github_token"`
	CopilotBaseURL string `json:"copilot_base_url" mapstructure:"copilot_base_url"`
	CopilotModel   string `json:"copilot_model" mapstructure:"copilot_model"`

	LogLevel string `json:"log_level" mapstructure:"log_level"` // error, warn, info, debug
	LogFile  string `json:"log_file" mapstructure:"log_file"`

	// Exercise detection cache
	EnableCache            bool `json:"enable_cache" mapstructure:"enable_cache"`
	MaxCacheSize           int  `json:"max_cache_size" mapstructure:"max_cache_size"`
	MaxExerciseTitleLength int  `json:"max_exercise_title_length" mapstructure:"max_exercise_title_length"`

	AITimeoutMs             int  `json:"ai_timeout_ms" mapstructure:"ai_timeout_ms"`
	MaxRegenerationAttempts int  `json:"max_regeneration_attempts" mapstructure:"max_regeneration_attempts"`
	EnablePerformanceMetric bool `json:"enable_performance_metrics" mapstructure:"enable_performance_metrics"`

	// Generated correction cache
	EnableCorrectionCache     bool `json:"enable_correction_cache" mapstructure:"enable_correction_cache"`
	CorrectionCacheSize       int  `json:"correction_cache_size" mapstructure:"correction_cache_size"`
	CorrectionCacheTTLMinutes int  `json:"correction_cache_ttl_minutes" mapstructure:"correction_cache_ttl_minutes"`

	RateLimitMaxRequests   int `json:"rate_limit_max_requests" mapstructure:"rate_limit_max_requests"`
	RateLimitWindowSeconds int `json:"rate_limit_window_seconds" mapstructure:"rate_limit_window_seconds"`

	MaxDocumentSize int64 `json:"max_document_size" mapstructure:"max_document_size"` // bytes

	// Backups kept per document after a correction is written
	MaxBackups int `json:"max_backups" mapstructure:"max_backups"`
}

// ExerciseStatus tells whether an exercise already has a correction.
type ExerciseStatus string

const (
	StatusPending   ExerciseStatus = "pending"
	StatusCorrected ExerciseStatus = "corrected"
)

// Exercise is one top-level \begin{exercice}...\end{exercice} block.
// Start and End are byte offsets; Content is always text[Start:End].
type Exercise struct {
	Number  int            `json:"number"`
	Start   int            `json:"start"`
	End     int            `json:"end"`
	Content string         `json:"content"`
	Title   string         `json:"title"`
	Status  ExerciseStatus `json:"status"`
}

// IsCorrected reports whether the exercise already carries a correction.
func (e Exercise) IsCorrected() bool {
	return e.Status == StatusCorrected
}

// DefaultTitle returns the fallback title used when no enonce is present.
func DefaultTitle(number int) string {
	return fmt.Sprintf("Exercice %d", number)
}

// ExerciseStructure is the decomposition of one exercise block.
// A nil field means the corresponding part is absent.
type ExerciseStructure struct {
	Enonce       *string `json:"enonce,omitempty"`
	Correction   *string `json:"correction,omitempty"`
	OtherContent *string `json:"other_content,omitempty"`
}

// HasCorrection reports whether a non-empty correction was found.
func (s ExerciseStructure) HasCorrection() bool {
	return s.Correction != nil && *s.Correction != ""
}

// NumberedEnvironment is a numbered section command or theorem-like environment.
type NumberedEnvironment struct {
	Type   string `json:"type"`
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// DocumentStructure is the numbering context of a document.
type DocumentStructure struct {
	Sections       []NumberedEnvironment `json:"sections"`
	Theorems       []NumberedEnvironment `json:"theorems"`
	CurrentSection int                   `json:"current_section"`
	CurrentTheorem int                   `json:"current_theorem"`
}

// ErrorCode classifies an AppError.
type ErrorCode string

const (
	ErrConfig              ErrorCode = "CONFIG_ERROR"
	ErrFileNotFound        ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrAPICall             ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit        ErrorCode = "API_RATE_LIMIT"
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCancelled           ErrorCode = "CANCELLED"
	ErrTimeout             ErrorCode = "TIMEOUT"
	ErrLatexParse          ErrorCode = "LATEX_PARSE_ERROR"
	ErrValidation          ErrorCode = "VALIDATION_ERROR"
	ErrAlreadyCorrected    ErrorCode = "ALREADY_CORRECTED"
	ErrDocumentTooLarge    ErrorCode = "DOCUMENT_TOO_LARGE"
	ErrInternal            ErrorCode = "INTERNAL_ERROR"
)

// AppError is an error carrying a code, a user-facing message and an optional cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsUserError reports whether the error stems from user input or environment
// rather than a bug, so it can be shown as-is.
func (e *AppError) IsUserError() bool {
	switch e.Code {
	case ErrInternal, ErrLatexParse:
		return false
	}
	return true
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
