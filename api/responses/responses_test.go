package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorDomainCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"insufficient stock", pkgerrors.New(pkgerrors.CodeInsufficientStock, "material short").WithDetails(map[string]any{"requested": "200"}), http.StatusConflict, "material short"},
		{"invalid transition", pkgerrors.New(pkgerrors.CodeInvalidStageTransition, "cut stage cannot move"), http.StatusConflict, "cut stage cannot move"},
		{"unknown employee", pkgerrors.New(pkgerrors.CodeUnknownEmployee, "no such employee"), http.StatusUnprocessableEntity, "no such employee"},
		{"not assignee", pkgerrors.New(pkgerrors.CodeNotAssignee, "not yours"), http.StatusForbidden, "not yours"},
		{"storage", pkgerrors.Storage(errors.New("connection refused"), "reserve"), http.StatusServiceUnavailable, "storage unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), nil, w, tt.err)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			var body types.ErrorEnvelope
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, body.Error.Message)
			}
		})
	}
}

func TestWriteErrorIncludesAllowedDetails(t *testing.T) {
	w := httptest.NewRecorder()
	existing := uuid.New()
	err := pkgerrors.New(pkgerrors.CodeConflict, "order OP-1 already exists").
		WithDetails(map[string]any{"order_id": existing})
	WriteError(context.Background(), nil, w, err)

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["order_id"] != existing.String() {
		t.Fatalf("expected order_id detail, got %v", body.Error.Details)
	}
}

func TestWriteErrorDefaultsToInternalForUntypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "internal server error" || body.Error.Details != nil {
		t.Fatalf("internal error leaked: %+v", body.Error)
	}
}
