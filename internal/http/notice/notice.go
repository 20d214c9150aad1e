// Package notice renders the toast-style messages the mobile app shows after
// every mutating request, plus the JSON response helpers handlers share.
package notice

import (
	"encoding/json"
	"net/http"
)

const (
	TypeSuccess = "success"
	TypeError   = "error"
)

// Notice is shown to the user as a transient toast.
type Notice struct {
	Type  string `json:"type"`
	Text1 string `json:"text1"`
	Text2 string `json:"text2,omitempty"`
}

func Success(text1 string) *Notice {
	return &Notice{Type: TypeSuccess, Text1: text1}
}

func Error(text1, text2 string) *Notice {
	return &Notice{Type: TypeError, Text1: text1, Text2: text2}
}

// Envelope wraps a payload with an optional notice.
type Envelope struct {
	Data   any     `json:"data,omitempty"`
	Notice *Notice `json:"notice,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes an error notice with the given status.
func WriteError(w http.ResponseWriter, status int, text1, text2 string) {
	WriteJSON(w, status, Envelope{Notice: Error(text1, text2)})
}
