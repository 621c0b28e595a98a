package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeInsufficientStock, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeInvalidStageTransition, status: http.StatusConflict, publicMsg: "invalid stage transition", detailsOK: true},
		{code: CodeUnknownEmployee, status: http.StatusUnprocessableEntity, publicMsg: "unknown employee", detailsOK: true},
		{code: CodeNotAssignee, status: http.StatusForbidden, publicMsg: "employee is not the stage assignee", detailsOK: true},
		{code: CodeStorageFailure, status: http.StatusServiceUnavailable, publicMsg: "storage unavailable", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if !HasCode(fmt.Errorf("outer: %w", wrapped), CodeConflict) {
		t.Fatalf("HasCode did not find code through wrapping")
	}
}

func TestStorageKeepsTypedErrors(t *testing.T) {
	typed := New(CodeNotFound, "missing")
	if got := Storage(typed, "load"); got != typed {
		t.Fatalf("expected typed error passthrough, got %v", got)
	}
	if !HasCode(Storage(stdErrors.New("disk"), "load"), CodeStorageFailure) {
		t.Fatalf("expected storage failure code")
	}
	if Storage(nil, "load") != nil {
		t.Fatalf("Storage(nil) should return nil")
	}
}

func TestDumpReportsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_production_orders_order_ref", TableName: "production_orders"}
	d := Dump(Wrap(CodeConflict, fmt.Errorf("insert: %w", pgErr), "duplicate order"))
	if d.Code != CodeConflict {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if d.Postgres == nil || d.Postgres.Code != "23505" || d.Postgres.Constraint != "ux_production_orders_order_ref" {
		t.Fatalf("postgres diagnostics missing: %+v", d.Postgres)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected wrapped chain, got %v", d.Chain)
	}
	if Dump(stdErrors.New("plain")).Postgres != nil {
		t.Fatal("plain errors carry no postgres info")
	}
}
