package auth

// Result is the uniform use-case outcome shape:
// {success, data} on success, {success, error:{code, message}} on failure.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

func Ok(data interface{}) Result {
	return Result{Success: true, Data: data}
}

func Fail(err error) Result {
	return Result{Success: false, Error: AsError(err)}
}
