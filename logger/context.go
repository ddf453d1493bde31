package logger

import (
	"encoding"
	"encoding/json"
	"net/http"
	"net/url"
	"runtime"
	"strconv"

	"github.com/xy-planning-network/trailrunner"
)

var _ encoding.TextMarshaler = LogContext{}

// A LogContext carries what a log message cannot say tersely.
type LogContext struct {
	// Caller replaces the call site the logger would otherwise find.
	// It is never part of the marshaled text.
	Caller string

	// Data is anything relevant at the time of logging.
	Data map[string]any

	// Error, if any, is what prompted logging.
	Error error

	// Request is the request being served, if any.
	Request *http.Request

	// Route names the route dispatched to, if any.
	Route string
}

type loggedRequest struct {
	Method    string              `json:"method"`
	URL       string              `json:"url"`
	Header    map[string][]string `json:"header"`
	Form      url.Values          `json:"form,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

type loggedContext struct {
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Route   string         `json:"route,omitempty"`
	Request *loggedRequest `json:"request,omitempty"`
}

// MarshalText renders lc as a JSON object of its non-zero fields.
// Data that cannot be represented as JSON produces an error.
func (lc LogContext) MarshalText() ([]byte, error) {
	out := loggedContext{Data: lc.Data, Route: lc.Route}
	if lc.Error != nil {
		out.Error = lc.Error.Error()
	}

	if r := lc.Request; r != nil {
		out.Request = &loggedRequest{
			Method: r.Method,
			URL:    r.URL.String(),
			Header: r.Header,
			Form:   r.Form,
		}
		out.Request.RequestID, _ = r.Context().Value(trailrunner.RequestIDKey).(string)
	}

	return json.Marshal(out)
}

// String is the JSON form of lc, or empty if it cannot be marshaled.
func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return ""
	}

	return string(b)
}

// CurrentCaller is the call site of whoever called the function calling CurrentCaller,
// ready for LogContext.Caller.
//
//	myFunc() {		<- reported
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return immediateFilepath(file) + ":" + strconv.Itoa(line)
}
