package handlers

import (
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

var validationStatusOnce sync.Once

// UseBadRequestForValidation makes huma report request validation failures,
// such as a missing long_url, as 400 instead of 422.
// It replaces huma.NewError process-wide, so call it once during startup.
func UseBadRequestForValidation() {
	validationStatusOnce.Do(func() {
		next := huma.NewError

		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			if status == http.StatusUnprocessableEntity {
				status = http.StatusBadRequest
			}

			return next(status, msg, errs...)
		}
	})
}
