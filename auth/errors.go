package auth

type (
	InvalidToken struct {
		cause error
	}
)

func (i InvalidToken) Error() string {
	if i.cause == nil {
		return "token is missing, malformed or carries an invalid signature"
	}
	return "token is missing, malformed or carries an invalid signature: " + i.cause.Error()
}

func (i InvalidToken) Unwrap() error { return i.cause }
