package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrMessageNotFound = fmt.Errorf("message not found")
	ErrProfileNotFound = fmt.Errorf("profile not found")
	ErrNotSender       = fmt.Errorf("only the sender can edit a message")
	ErrNoChange        = fmt.Errorf("no change to apply")
	ErrSubscriberOpen  = fmt.Errorf("subscriber already open")
)
