package models

// Response - struct for sending payload from server and more info about occurred error
// It behaves like Either Monad: 'Error' field is set if error occurred, otherwise 'Body' contains payload
type Response struct {
	Error interface{} `json:"error"`
	Body  interface{} `json:"body"`
}

// RequestErrorCode - error code that is sent to client in 'Error' field of Response
type RequestErrorCode interface {
	error
	Code() string
}

type requestErrorCode string

func (c requestErrorCode) Error() string {
	return string(c)
}

func (c requestErrorCode) Code() string {
	return string(c)
}

// MarshalJSON - error code is sent as plain json string
func (c requestErrorCode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + string(c) + `"`), nil
}

// NewRequestErrorCode - creates a new error code
func NewRequestErrorCode(code string) RequestErrorCode {
	return requestErrorCode(code)
}
