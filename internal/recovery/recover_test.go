package recovery

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRecoverToError(t *testing.T) {
	err := RecoverToError(quiet, "DoGet", func() error { panic("boom") })
	if status.Code(err) != codes.Internal {
		t.Errorf("RecoverToError() code = %v, want Internal", status.Code(err))
	}

	want := errors.New("plain")
	if err := RecoverToError(quiet, "DoGet", func() error { return want }); err != want {
		t.Errorf("RecoverToError() = %v, want %v", err, want)
	}
}

func TestRecoverToValue(t *testing.T) {
	v, err := RecoverToValue(quiet, "Open", func() (int, error) { panic("bad opener") })
	if err == nil || v != 0 {
		t.Errorf("RecoverToValue() = %d, %v; want 0 and an error", v, err)
	}

	v, err = RecoverToValue(nil, "Open", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("RecoverToValue() = %d, %v; want 7", v, err)
	}
}
