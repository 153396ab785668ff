package http

import (
	"net/http"

	"github.com/opsboard/opsboard/internal/adapter/http/response"
	apperror "github.com/opsboard/opsboard/pkg/error"
)

// writeError maps any usecase/domain error onto the API's terminal outcomes
// and writes the envelope.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperror.MapError(err)
	response.Error(w, appErr.Status, appErr.Message)
}
