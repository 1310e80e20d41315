package encoding

import (
	"encoding"
	"errors"
	"testing"
)

var (
	_ encoding.TextMarshaler   = (*SnapshotEncoding)(nil)
	_ encoding.TextUnmarshaler = (*SnapshotEncoding)(nil)
)

func TestSnapshotEncoding_RoundTrip(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name     string
		bindings []Binding
	}{
		{
			name:     "empty",
			bindings: nil,
		},
		{
			name: "one binding",
			bindings: []Binding{
				{Name: "x", Value: "42"},
			},
		},
		{
			name: "several bindings",
			bindings: []Binding{
				{Name: "x", Value: "42"},
				{Name: "pi", Value: "355/113"},
				{Name: "greeting", Value: `"hello, world"`},
				{Name: "pair", Value: "(1 2 3)"},
			},
		},
	}

	for _, tc := range tcs {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			enc := SnapshotEncoding{Bindings: tc.bindings}

			text, err := enc.MarshalText()
			if err != nil {
				t.Fatalf("marshal: %s", err)
			}

			dec := SnapshotEncoding{}
			if err := dec.UnmarshalText(text); err != nil {
				if len(tc.bindings) == 0 && errors.Is(err, errEmpty) {
					return
				}

				t.Fatalf("unmarshal: %s", err)
			}

			if len(dec.Bindings) != len(tc.bindings) {
				t.Fatalf("got %d bindings, want %d", len(dec.Bindings), len(tc.bindings))
			}

			for i, b := range tc.bindings {
				if dec.Bindings[i] != b {
					t.Errorf("binding %d: got %+v, want %+v", i, dec.Bindings[i], b)
				}
			}
		})
	}
}

func TestSnapshotEncoding_UnmarshalText_Invalid(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name      string
		input     string
		expectErr error
	}{
		{name: "empty", input: "", expectErr: errEmpty},
		{name: "nonsense", input: "u wot mate", expectErr: errInvalidHex},
		{name: "bad hex", input: ":invalid", expectErr: errInvalidHex},
		{name: "eof only", input: ":00000001ff\n", expectErr: errEmpty},
	}

	for _, tc := range tcs {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dec := SnapshotEncoding{}
			err := dec.UnmarshalText([]byte(tc.input))

			if !errors.Is(err, tc.expectErr) {
				t.Errorf("got err %v, want %v", err, tc.expectErr)
			}
		})
	}
}
