package restapi

import (
	"encoding/json"
	"net/http"

	"github.com/blinky-z/Board/models"
)

// error codes shared by all endpoints
var (
	// TechnicalError - store call failed
	TechnicalError = models.NewRequestErrorCode("TECHNICAL_ERROR")
	// BadRequestBody - body is not a json object of the expected shape
	BadRequestBody = models.NewRequestErrorCode("BAD_BODY")
	// RequestTooLarge - body is larger than maxRequestBodyLen
	RequestTooLarge = models.NewRequestErrorCode("REQUEST_TOO_LARGE")
)

// Respond - status only, used by the health check
func Respond(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// writeEnvelope - every json answer of the api is a models.Response
func writeEnvelope(w http.ResponseWriter, code int, response models.Response) {
	encodedResponse, err := json.Marshal(response)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(encodedResponse)
}

// RespondWithError - writes {"error": code, "body": null}
func RespondWithError(w http.ResponseWriter, code int, errorCode models.RequestErrorCode) {
	writeEnvelope(w, code, models.Response{Error: errorCode})
}

// RespondWithBody - writes {"error": null, "body": payload}. Posts and created drafts are sent this way
func RespondWithBody(w http.ResponseWriter, code int, payload interface{}) {
	writeEnvelope(w, code, models.Response{Body: payload})
}
