package response

// Response is the standard API envelope. POS clients branch on the success
// flag alone; the HTTP status code is secondary.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a success envelope
func OK(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Fail wraps an error message in a failure envelope
func Fail(err string) Response {
	return Response{
		Success: false,
		Error:   err,
	}
}
