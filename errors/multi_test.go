package errors

import (
	"reflect"
	"testing"
)

func TestAppend(t *testing.T) {
	cases := map[string]struct {
		errs []error
		want error
	}{
		"nothing":             {errs: nil, want: nil},
		"only nils":           {errs: []error{nil, nil}, want: nil},
		"single error":        {errs: []error{nil, ErrNotFound}, want: ErrNotFound},
		"two errors":          {errs: []error{ErrNotFound, ErrMsg}, want: multiError{ErrNotFound, ErrMsg}},
		"nested is flattened": {errs: []error{Append(ErrNotFound, ErrMsg), ErrState}, want: multiError{ErrNotFound, ErrMsg, ErrState}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := Append(tc.errs...); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	err := Append(
		Field("To", ErrEmpty, "required"),
		Field("Amount", ErrAmount, "negative"),
		Field("To", ErrInput, "malformed"),
	)
	if got := FieldErrors(err, "To"); len(got) != 2 {
		t.Fatalf("want 2 errors, got %d", len(got))
	}
	if got := FieldErrors(err, "Amount"); len(got) != 1 || !ErrAmount.Is(got[0]) {
		t.Fatalf("unexpected amount errors: %v", got)
	}
	if got := FieldErrors(err, "Token"); len(got) != 0 {
		t.Fatalf("unexpected token errors: %v", got)
	}
}
