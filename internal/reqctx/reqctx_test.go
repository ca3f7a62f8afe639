package reqctx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRequestContext(t *testing.T) {
	ctx := WithRequestContext(context.Background(), "avito")
	rc := GetRequestContext(ctx)

	if len(rc.RequestID) != 16 {
		t.Errorf("expected 16 hex chars, got %q", rc.RequestID)
	}
	if rc.Site != "avito" {
		t.Errorf("unexpected site %q", rc.Site)
	}
	if GetRequestContext(context.Background()).RequestID != "unknown" {
		t.Error("expected placeholder id for untagged context")
	}
}

func TestNewRequestError(t *testing.T) {
	ctx := WithRequestContext(context.Background(), "avito")
	base := errors.New("configuration failed")

	err := NewRequestError(ctx, base)
	if !errors.Is(err, base) {
		t.Error("expected wrapped error to match")
	}
	if !strings.HasPrefix(err.Error(), "["+GetRequestContext(ctx).RequestID+"]") {
		t.Errorf("expected request id prefix, got %q", err.Error())
	}
	if NewRequestError(ctx, nil) != nil {
		t.Error("nil error should stay nil")
	}
}
