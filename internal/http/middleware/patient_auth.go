package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/careapp/internal/http/notice"
	"github.com/wolfman30/careapp/internal/identity"
)

// PatientJWT reads an optional HMAC-signed bearer token and stores its subject
// as the signed-in patient. Requests without a token pass through anonymously;
// a present but invalid token is rejected. An empty secret disables the check.
func PatientJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if secret == "" || auth == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				notice.WriteError(w, http.StatusUnauthorized, "Unauthorized", "malformed authorization header")
				return
			}
			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
				notice.WriteError(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithPatientID(r.Context(), claims.Subject)))
		})
	}
}

// RequirePatient rejects requests that carry no signed-in patient.
func RequirePatient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.PatientIDFromContext(r.Context()); !ok {
			notice.WriteError(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
