// Package identity carries the signed-in patient through request contexts.
package identity

import "context"

type ctxKey string

const patientKey ctxKey = "careapp.patient_id"

// WithPatientID stores the patient id in context.
func WithPatientID(ctx context.Context, patientID string) context.Context {
	return context.WithValue(ctx, patientKey, patientID)
}

// PatientIDFromContext extracts the patient id if present.
func PatientIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(patientKey)
	if val == nil {
		return "", false
	}
	patientID, ok := val.(string)
	return patientID, ok && patientID != ""
}
