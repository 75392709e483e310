package errors

import "fmt"

var (
	ErrPostNotFound        = fmt.Errorf("post not found")
	ErrAuthorNotFound      = fmt.Errorf("author not found")
	ErrAuthorAlreadyExists = fmt.Errorf("author already exists")
	ErrConnBufferFull      = fmt.Errorf("connection buffer full")
	ErrConnClosed          = fmt.Errorf("connection closed")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
)
