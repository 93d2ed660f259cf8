package errors

import (
	"context"
	goerrors "errors"
	"net"
	"strconv"
)

// remote is satisfied by backend error responses.
type remote interface {
	StatusCode() int
}

// Classify returns a short label for metric and log tags:
// "canceled", "timeout", "http_<status>", "network" or "other".
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var r remote
	if goerrors.As(err, &r) {
		return "http_" + strconv.Itoa(r.StatusCode())
	}
	switch {
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	return "other"
}
