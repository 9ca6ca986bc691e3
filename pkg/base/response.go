package base

import (
	"strconv"
	"strings"
)

// StatusCode is the status code of a RTSP response.
type StatusCode int

// standard status codes
const (
	StatusContinue                           StatusCode = 100
	StatusOK                                 StatusCode = 200
	StatusMovedPermanently                   StatusCode = 301
	StatusFound                              StatusCode = 302
	StatusSeeOther                           StatusCode = 303
	StatusNotModified                        StatusCode = 304
	StatusUseProxy                           StatusCode = 305
	StatusBadRequest                         StatusCode = 400
	StatusUnauthorized                       StatusCode = 401
	StatusPaymentRequired                    StatusCode = 402
	StatusForbidden                          StatusCode = 403
	StatusNotFound                           StatusCode = 404
	StatusMethodNotAllowed                   StatusCode = 405
	StatusNotAcceptable                      StatusCode = 406
	StatusProxyAuthRequired                  StatusCode = 407
	StatusRequestTimeout                     StatusCode = 408
	StatusGone                               StatusCode = 410
	StatusPreconditionFailed                 StatusCode = 412
	StatusRequestEntityTooLarge              StatusCode = 413
	StatusRequestURITooLong                  StatusCode = 414
	StatusUnsupportedMediaType               StatusCode = 415
	StatusParameterNotUnderstood             StatusCode = 451
	StatusNotEnoughBandwidth                 StatusCode = 453
	StatusSessionNotFound                    StatusCode = 454
	StatusMethodNotValidInThisState          StatusCode = 455
	StatusHeaderFieldNotValidForResource     StatusCode = 456
	StatusInvalidRange                       StatusCode = 457
	StatusParameterIsReadOnly                StatusCode = 458
	StatusAggregateOperationNotAllowed       StatusCode = 459
	StatusOnlyAggregateOperationAllowed      StatusCode = 460
	StatusUnsupportedTransport               StatusCode = 461
	StatusDestinationUnreachable             StatusCode = 462
	StatusInternalServerError                StatusCode = 500
	StatusNotImplemented                     StatusCode = 501
	StatusBadGateway                         StatusCode = 502
	StatusServiceUnavailable                 StatusCode = 503
	StatusGatewayTimeout                     StatusCode = 504
	StatusRTSPVersionNotSupported            StatusCode = 505
	StatusOptionNotSupported                 StatusCode = 551
)

// StatusMessages contains the status messages associated with each status code.
var StatusMessages = map[StatusCode]string{
	StatusContinue: "Continue",

	StatusOK: "OK",

	StatusMovedPermanently: "Moved Permanently",
	StatusFound:            "Found",
	StatusSeeOther:         "See Other",
	StatusNotModified:      "Not Modified",
	StatusUseProxy:         "Use Proxy",

	StatusBadRequest:                     "Bad Request",
	StatusUnauthorized:                   "Unauthorized",
	StatusPaymentRequired:                "Payment Required",
	StatusForbidden:                      "Forbidden",
	StatusNotFound:                       "Not Found",
	StatusMethodNotAllowed:               "Method Not Allowed",
	StatusNotAcceptable:                  "Not Acceptable",
	StatusProxyAuthRequired:              "Proxy Auth Required",
	StatusRequestTimeout:                 "Request Timeout",
	StatusGone:                           "Gone",
	StatusPreconditionFailed:             "Precondition Failed",
	StatusRequestEntityTooLarge:          "Request Entity Too Large",
	StatusRequestURITooLong:              "Request URI Too Long",
	StatusUnsupportedMediaType:           "Unsupported Media Type",
	StatusParameterNotUnderstood:         "Parameter Not Understood",
	StatusNotEnoughBandwidth:             "Not Enough Bandwidth",
	StatusSessionNotFound:                "Session Not Found",
	StatusMethodNotValidInThisState:      "Method Not Valid In This State",
	StatusHeaderFieldNotValidForResource: "Header Field Not Valid for Resource",
	StatusInvalidRange:                   "Invalid Range",
	StatusParameterIsReadOnly:            "Parameter Is Read-Only",
	StatusAggregateOperationNotAllowed:   "Aggregate Operation Not Allowed",
	StatusOnlyAggregateOperationAllowed:  "Only Aggregate Operation Allowed",
	StatusUnsupportedTransport:           "Unsupported Transport",
	StatusDestinationUnreachable:         "Destination Unreachable",

	StatusInternalServerError:     "Internal Server Error",
	StatusNotImplemented:          "Not Implemented",
	StatusBadGateway:              "Bad Gateway",
	StatusServiceUnavailable:      "Service Unavailable",
	StatusGatewayTimeout:          "Gateway Timeout",
	StatusRTSPVersionNotSupported: "RTSP Version Not Supported",
	StatusOptionNotSupported:      "Option Not Supported",
}

// error messages of responses that could not be decoded.
const (
	ResponseErrorEmpty           = "empty response"
	ResponseErrorMalformedStatus = "malformed status line"
)

// Response is a RTSP response.
type Response struct {
	// numeric status code. 0 if it could not be parsed.
	StatusCode StatusCode

	// status message
	StatusMessage string

	// header values
	Header Header

	// body
	Body string

	// set when the raw response could not be decoded.
	ErrorMessage string
}

// Successful returns whether the status code is in the 2xx range.
func (res Response) Successful() bool {
	return res.StatusCode >= 200 && res.StatusCode < 300
}

// ParseResponse decodes a raw response.
// It never fails: undecodable input results in a response with StatusCode 0
// and ErrorMessage set.
func ParseResponse(raw string) *Response {
	if strings.TrimSpace(raw) == "" {
		return &Response{ErrorMessage: ResponseErrorEmpty}
	}

	lines := strings.Split(raw, "\r\n")

	res := &Response{}

	parts := strings.SplitN(lines[0], " ", 3)
	if len(parts) >= 2 {
		if code, err := strconv.Atoi(parts[1]); err == nil {
			res.StatusCode = StatusCode(code)
		}
	}
	if len(parts) == 3 {
		res.StatusMessage = parts[2]
	}

	if res.StatusCode == 0 {
		res.ErrorMessage = ResponseErrorMalformedStatus
	}

	n := res.Header.parse(lines[1:])

	if 1+n < len(lines) {
		res.Body = strings.Join(lines[1+n:], "\r\n")
	}

	return res
}

// Marshal encodes a Response.
func (res Response) Marshal() []byte {
	msg := res.StatusMessage
	if msg == "" {
		msg = StatusMessages[res.StatusCode]
	}

	var sb strings.Builder

	sb.WriteString(rtspProtocol10 + " " + strconv.FormatInt(int64(res.StatusCode), 10) + " " + msg + "\r\n")
	sb.WriteString(res.Header.marshal(map[string]struct{}{"Content-Length": {}}))

	if len(res.Body) != 0 {
		sb.WriteString("Content-Length: " + strconv.FormatInt(int64(len(res.Body)), 10) + "\r\n")
	}

	sb.WriteString("\r\n")
	sb.WriteString(res.Body)

	return []byte(sb.String())
}

// String implements fmt.Stringer.
func (res Response) String() string {
	return string(res.Marshal())
}
