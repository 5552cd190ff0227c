package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestE(t *testing.T) {
	t.Run("returns nil when error is nil", func(t *testing.T) {
		got := E("op", NotFound, nil)
		if got != nil {
			t.Errorf("E() with nil error = %v, want nil", got)
		}
	})

	t.Run("constructs Error with all fields", func(t *testing.T) {
		root := errors.New("root cause")
		err := E("qrcode.repo.GetByID", NotFound, root)

		var e *Error
		if !errors.As(err, &e) {
			t.Fatal("expected error to be of type *errx.Error")
		}

		if got, want := e.Op, "qrcode.repo.GetByID"; got != want {
			t.Errorf("Op = %q, want %q", got, want)
		}
		if got, want := e.Kind, NotFound; got != want {
			t.Errorf("Kind = %v, want %v", got, want)
		}
		if !errors.Is(e.Err, root) {
			t.Errorf("Err = %v, want %v", e.Err, root)
		}
	})

	t.Run("preserves all error kinds", func(t *testing.T) {
		kinds := []Kind{Unknown, NotFound, Invalid, Malformed, Unavailable, Internal}
		root := errors.New("test error")

		for _, kind := range kinds {
			t.Run(fmt.Sprintf("kind_%d", kind), func(t *testing.T) {
				err := E("operation", kind, root)
				if got := KindOf(err); got != kind {
					t.Errorf("KindOf() = %v, want %v", got, kind)
				}
			})
		}
	})
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "nil inner error returns op",
			err:  &Error{Op: "qrcode.service.Get", Kind: NotFound, Err: nil},
			want: "qrcode.service.Get",
		},
		{
			name: "empty op returns inner error message",
			err:  &Error{Op: "", Kind: Unknown, Err: errors.New("root cause")},
			want: "root cause",
		},
		{
			name: "normal case formats op and error",
			err:  &Error{Op: "qrcode.service.List", Kind: Unavailable, Err: errors.New("root cause")},
			want: "qrcode.service.List: root cause",
		},
		{
			name: "both empty returns empty op",
			err:  &Error{Op: "", Kind: Unknown, Err: nil},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	root := errors.New("root")
	err := E("qrcode.repo.List", Unavailable, root)

	if !errors.Is(err, root) {
		t.Error("errors.Is() failed to identify root error through unwrapping")
	}
}

func TestKindOf(t *testing.T) {
	t.Run("returns Unknown for plain errors", func(t *testing.T) {
		if got := KindOf(errors.New("plain")); got != Unknown {
			t.Errorf("KindOf() = %v, want Unknown", got)
		}
	})

	t.Run("returns Unknown for nil", func(t *testing.T) {
		if got := KindOf(nil); got != Unknown {
			t.Errorf("KindOf() = %v, want Unknown", got)
		}
	})

	t.Run("finds kind through wrapping", func(t *testing.T) {
		inner := E("qrcode.destination", Malformed, errors.New("unrecognized variant id"))
		wrapped := fmt.Errorf("enrich q1: %w", inner)
		if got := KindOf(wrapped); got != Malformed {
			t.Errorf("KindOf() = %v, want Malformed", got)
		}
	})
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Unknown, "Unknown"},
		{NotFound, "NotFound"},
		{Invalid, "Invalid"},
		{Malformed, "Malformed"},
		{Unavailable, "Unavailable"},
		{Internal, "Internal"},
		{Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
