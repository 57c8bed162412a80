package models

// ImageParamsRequest carries adjustment parameters for an edit session.
// Absent fields leave the current value untouched.
type ImageParamsRequest struct {
	Brightness *float64 `json:"brightness,omitempty" example:"100"`
	Contrast   *float64 `json:"contrast,omitempty" example:"100"`
	Saturation *float64 `json:"saturation,omitempty" example:"100"`
	Scale      *float64 `json:"scale,omitempty" example:"100"`
	// ClipShape is "rectangle" or "circle".
	ClipShape *string `json:"clip_shape,omitempty" example:"circle"`
}

// SetParameterRequest sets one named parameter. Value is a number for the
// filters and scale, or "rectangle"/"circle" for the clip shape.
type SetParameterRequest struct {
	Value interface{} `json:"value" swaggertype:"string" example:"120"`
}

// CreateImageSessionRequest is the JSON alternative to a multipart upload.
type CreateImageSessionRequest struct {
	// DataURI is a "data:image/...;base64," encoded source image.
	DataURI string `json:"data_uri"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
