package models

// APICallDetail describes one outbound HTTP call. The endpoint path, headers
// and payload template may all carry {{field}} placeholders that are bound
// from submitted form data at dispatch time.
type APICallDetail struct {
	HTTPMethod             string            `json:"http_method"                       validate:"required,oneof=GET POST PUT DELETE PATCH"`
	EndpointPath           string            `json:"endpoint_path"                     validate:"required"`
	Headers                map[string]string `json:"headers,omitempty"`
	RequestPayloadTemplate any               `json:"request_payload_template,omitempty"`
}

// APIEndpoint is an ordered sequence of call descriptors attached to an action.
type APIEndpoint struct {
	ID         string          `json:"id"             validate:"required"`
	Type       string          `json:"type,omitempty"`
	APIDetails []APICallDetail `json:"api_details"    validate:"required,min=1,dive"`
}
