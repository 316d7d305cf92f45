package decode

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
)

// Error decodes a non-2xx response body into a *ServiceError, dispatching
// on content type: Queue/Blob responses are XML, Table responses are JSON.
func Error(statusCode int, contentType string, payload []byte) *ServiceError {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return jsonError(statusCode, payload)
	}
	return xmlError(statusCode, payload)
}

type xmlErrorBody struct {
	XMLName                   xml.Name `xml:"Error"`
	Code                      string   `xml:"Code"`
	Message                   string   `xml:"Message"`
	AuthenticationErrorDetail string   `xml:"AuthenticationErrorDetail"`
}

func xmlError(statusCode int, payload []byte) *ServiceError {
	var body xmlErrorBody
	_ = xml.Unmarshal(payload, &body)

	code := body.Code
	if code == "" {
		code = fallbackCode(statusCode)
	}
	message := body.Message
	if message == "" {
		message = synthesizedMessage(payload)
	}

	return &ServiceError{
		ErrorCode:  code,
		Message:    message,
		Detail:     body.AuthenticationErrorDetail,
		StatusCode: statusCode,
		Payload:    string(payload),
	}
}

type jsonErrorBody struct {
	ODataError struct {
		Code    string          `json:"code"`
		Message json.RawMessage `json:"message"`
	} `json:"odata.error"`
}

func jsonError(statusCode int, payload []byte) *ServiceError {
	var body jsonErrorBody
	if err := json.Unmarshal(payload, &body); err != nil || body.ODataError.Code == "" {
		return &ServiceError{
			ErrorCode:  "InternalErrorWithoutCode",
			Message:    synthesizedMessage(payload),
			StatusCode: statusCode,
			Payload:    string(payload),
		}
	}

	message := tableErrorMessage(body.ODataError.Message)
	if message == "" {
		message = synthesizedMessage(payload)
	}

	return &ServiceError{
		ErrorCode:  body.ODataError.Code,
		Message:    message,
		StatusCode: statusCode,
		Payload:    string(payload),
	}
}

// tableErrorMessage accepts either odata.error.message.value (the usual
// {lang,value} object) or a bare string, since both shapes appear across
// Table service API versions.
func tableErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

func fallbackCode(statusCode int) string {
	if statusCode >= 500 && statusCode < 600 {
		return "InternalErrorWithoutCode"
	}
	return "ErrorWithoutCode"
}

func synthesizedMessage(payload []byte) string {
	return fmt.Sprintf("No error message given, in payload %q", string(payload))
}
