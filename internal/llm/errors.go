package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/collegegpt/backend/pkg/circuitbreaker"
)

// ErrorKind is the coarse failure class used to pick a fallback answer.
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindAuthentication ErrorKind = "authentication"
	KindQuota          ErrorKind = "quota"
	KindNetwork        ErrorKind = "network"
	KindGeneral        ErrorKind = "general"
)

// Classify maps an error to an ErrorKind, trusting typed SDK errors before
// falling back to the message text.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	if kind := fromStatus(statusCode(err)); kind != KindNone {
		return kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api_key") || strings.Contains(msg, "api key") || strings.Contains(msg, "authentication"):
		return KindAuthentication
	case strings.Contains(msg, "quota") || strings.Contains(msg, "limit"):
		return KindQuota
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "network"):
		return KindNetwork
	default:
		return KindGeneral
	}
}

func statusCode(err error) int {
	var oerr *openai.APIError
	if errors.As(err, &oerr) {
		return oerr.HTTPStatusCode
	}
	var rerr *openai.RequestError
	if errors.As(err, &rerr) {
		return rerr.HTTPStatusCode
	}
	var aerr *sdk.Error
	if errors.As(err, &aerr) {
		return aerr.StatusCode
	}
	return 0
}

func fromStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthentication
	case code == http.StatusTooManyRequests:
		return KindQuota
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindNetwork
	case code >= 400:
		return KindGeneral
	default:
		return KindNone
	}
}
