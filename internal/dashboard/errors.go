package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/KaramelBytes/medintel/internal/ai"
	"github.com/KaramelBytes/medintel/internal/analysis"
	"github.com/KaramelBytes/medintel/internal/charts"
	"github.com/KaramelBytes/medintel/internal/parser"
	"github.com/KaramelBytes/medintel/internal/report"
	"github.com/KaramelBytes/medintel/internal/session"
)

// ErrorCode is the machine-readable error class returned to clients.
type ErrorCode string

const (
	CodeSchema     ErrorCode = "SCHEMA_ERROR"
	CodeParse      ErrorCode = "PARSE_ERROR"
	CodeNoData     ErrorCode = "NO_DATA"
	CodeCredential ErrorCode = "CREDENTIAL_ERROR"
	CodeAuth       ErrorCode = "AUTH_ERROR"
	CodeNetwork    ErrorCode = "NETWORK_ERROR"
	CodeUpstream   ErrorCode = "UPSTREAM_ERROR"
	CodeNoAnalysis ErrorCode = "NO_ANALYSIS"
	CodeStale      ErrorCode = "DATA_CHANGED"
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeAIBusy     ErrorCode = "AI_BUSY"
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
)

// AppError is an error with the HTTP status and message shown to the user.
type AppError struct {
	Raw      error             `json:"-"`
	HTTPCode int               `json:"-"`
	Code     ErrorCode         `json:"code"`
	Message  string            `json:"message"`
	Details  map[string]string `json:"details,omitempty"`
}

func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e AppError) Unwrap() error { return e.Raw }

// WithDetail adds a detail to the error.
func (e AppError) WithDetail(key, value string) AppError {
	d := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		d[k] = v
	}
	d[key] = value
	e.Details = d
	return e
}

func ErrNoData() AppError {
	return AppError{HTTPCode: http.StatusConflict, Code: CodeNoData, Message: "Upload or enter data before using this feature."}
}

func ErrNoAnalysis() AppError {
	return AppError{HTTPCode: http.StatusConflict, Code: CodeNoAnalysis, Message: "Generate an AI analysis before downloading the report."}
}

func ErrAIBusy() AppError {
	return AppError{HTTPCode: http.StatusTooManyRequests, Code: CodeAIBusy, Message: "Too many AI requests in progress; try again shortly."}
}

func ErrValidation(message string) AppError {
	return AppError{HTTPCode: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

func ErrNotFound(resource string) AppError {
	return AppError{HTTPCode: http.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func ErrInternal(err error) AppError {
	return AppError{Raw: err, HTTPCode: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error"}
}

// FromError classifies domain errors into AppErrors.
func FromError(err error) AppError {
	var (
		appErr    AppError
		schemaErr *analysis.SchemaError
		parseErr  *parser.ParseError
		credErr   *ai.CredentialError
		authErr   *ai.AuthError
		netErr    *ai.NetworkError
		upErr     *ai.UpstreamError
		verrs     validator.ValidationErrors
		httpErr   *echo.HTTPError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &schemaErr):
		return AppError{Raw: err, HTTPCode: http.StatusUnprocessableEntity, Code: CodeSchema,
			Message: "Error: 'Date' column not found in the data."}
	case errors.Is(err, analysis.ErrNoValidRows):
		return AppError{Raw: err, HTTPCode: http.StatusUnprocessableEntity, Code: CodeNoData,
			Message: "No valid data after cleaning. Check your input."}
	case errors.As(err, &parseErr), errors.Is(err, parser.ErrUnsupported),
		errors.Is(err, parser.ErrEmptyFile), errors.Is(err, parser.ErrNoRows):
		return AppError{Raw: err, HTTPCode: http.StatusBadRequest, Code: CodeParse,
			Message: "Error processing file: " + err.Error()}
	case errors.Is(err, session.ErrNoData), errors.Is(err, charts.ErrNoData):
		e := ErrNoData()
		e.Raw = err
		return e
	case errors.Is(err, session.ErrDataChanged):
		return AppError{Raw: err, HTTPCode: http.StatusConflict, Code: CodeStale,
			Message: "The data changed while the analysis was running. Generate the analysis again."}
	case errors.As(err, &credErr):
		return AppError{Raw: err, HTTPCode: http.StatusServiceUnavailable, Code: CodeCredential,
			Message: credErr.Setting + " is not configured on the server."}
	case errors.As(err, &authErr):
		return AppError{Raw: err, HTTPCode: http.StatusUnauthorized, Code: CodeAuth,
			Message: "Enter your OpenRouter API key in the configuration section."}
	case errors.As(err, &netErr):
		return AppError{Raw: err, HTTPCode: http.StatusBadGateway, Code: CodeNetwork,
			Message: "Connection error talking to " + netErr.Backend + "."}
	case errors.As(err, &upErr):
		e := AppError{Raw: err, HTTPCode: http.StatusBadGateway, Code: CodeUpstream,
			Message: "The AI provider returned an error."}
		if upErr.API != nil {
			e = e.WithDetail("status", strconv.Itoa(upErr.API.StatusCode))
			if upErr.API.RequestID != "" {
				e = e.WithDetail("request_id", upErr.API.RequestID)
			}
			if upErr.API.Message != "" {
				e.Message = "The AI provider returned an error: " + upErr.API.Message
			}
		}
		return e
	case errors.Is(err, ai.ErrUnknownModel), errors.Is(err, ai.ErrUnknownBackend):
		e := ErrValidation(err.Error())
		e.Raw = err
		return e
	case errors.Is(err, report.ErrNoAnalysis):
		e := ErrNoAnalysis()
		e.Raw = err
		return e
	case errors.As(err, &verrs):
		e := ErrValidation("Invalid request.")
		e.Raw = err
		for _, fe := range verrs {
			e = e.WithDetail(fe.Field(), fe.Tag())
		}
		return e
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			msg = s
		}
		code := CodeValidation
		switch {
		case httpErr.Code == http.StatusNotFound || httpErr.Code == http.StatusMethodNotAllowed:
			code = CodeNotFound
		case httpErr.Code >= 500:
			code = CodeInternal
		}
		return AppError{Raw: err, HTTPCode: httpErr.Code, Code: code, Message: msg}
	}
	return ErrInternal(err)
}

// HandleError centralizes error logging and the JSON error body.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := FromError(err)
	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", string(appErr.Code)),
			zap.Error(err),
		}
		if appErr.HTTPCode >= 500 && appErr.Code == CodeInternal {
			logger.Error("http.response.error", fields...)
		} else {
			logger.Warn("http.response.error", fields...)
		}
	}
	return c.JSON(appErr.HTTPCode, appErr)
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
