package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/reservahq/reserva/pkg/fault"
)

// FaultResponse is the error envelope for typed service errors
type FaultResponse struct {
	Error string `json:"error"`
	// ReadOnly is set on permission denials so gated UIs can disable
	// controls instead of hiding data.
	ReadOnly bool `json:"read_only,omitempty"`
}

// WriteFault maps a typed service error to its HTTP status.
//
// Unrecognized errors become a generic 500 without leaking the message.
func WriteFault(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case fault.IsUnauthenticated(err):
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(FaultResponse{Error: err.Error()})
	case fault.IsPermissionDenied(err):
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(FaultResponse{Error: err.Error(), ReadOnly: true})
	case fault.IsNotFound(err):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(FaultResponse{Error: err.Error()})
	case fault.IsValidation(err), fault.IsInvalidTransition(err):
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(FaultResponse{Error: err.Error()})
	case fault.IsConflict(err):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(FaultResponse{Error: err.Error()})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(FaultResponse{Error: "internal server error"})
	}
}
