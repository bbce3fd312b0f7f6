package parser

import (
	"errors"
	"testing"
)

func TestSplitFields(t *testing.T) {
	f := SplitFields(" HVC ; Harbor Volley Club ;3;;")

	want := []string{"HVC", "Harbor Volley Club", "3", "", ""}
	if f.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", f.Len(), len(want))
	}
	for i, w := range want {
		got, err := f.At(i)
		if err != nil {
			t.Fatalf("At(%d): %v", i, err)
		}
		if got != w {
			t.Errorf("At(%d) = %q, want %q", i, got, w)
		}
	}

	if _, err := f.At(5); !errors.Is(err, ErrMissingField) {
		t.Errorf("At(5) = %v, want ErrMissingField", err)
	}
	if _, err := f.At(-1); !errors.Is(err, ErrMissingField) {
		t.Errorf("At(-1) = %v, want ErrMissingField", err)
	}
}

func TestFieldsInt(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    int
		wantErr error
	}{
		{"valid", "x;3", 3, nil},
		{"padded", "x; 5 ", 5, nil},
		{"lower bound", "x;0", 0, nil},
		{"above range", "x;6", 0, ErrConversion},
		{"negative", "x;-1", 0, ErrConversion},
		{"not a number", "x;three", 0, ErrConversion},
		{"blank", "x;", 0, ErrConversion},
		{"missing", "x", 0, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitFields(tt.line).Int(1, 0, 5)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Int() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Int() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}
}
