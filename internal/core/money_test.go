package core

import "testing"

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *float64
		wantErr bool
	}{
		{name: "dollar with thousands", in: "$1,200.00", want: Float(1200.00)},
		{name: "plain decimal", in: "45.50", want: Float(45.50)},
		{name: "no value sentinel", in: "$ -", want: nil},
		{name: "empty", in: "", want: nil},
		{name: "whitespace", in: "  ", want: nil},
		{name: "garbage", in: "abc", wantErr: true},
		{name: "nan spelling", in: "NaN", wantErr: true},
		{name: "inf spelling", in: "Inf", wantErr: true},
		{name: "positive inf", in: "+Inf", wantErr: true},
		{name: "negative inf", in: "-Inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("got nil, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("got %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	if got := ParseDecimal("12.5"); got == nil || *got != 12.5 {
		t.Errorf("ParseDecimal(12.5) = %v", got)
	}
	if got := ParseDecimal(""); got != nil {
		t.Errorf("ParseDecimal(empty) = %v, want nil", *got)
	}
	// Corrupt fields map to absent, never NaN or Inf. ParseFloat would
	// happily accept these spellings.
	for _, in := range []string{"not-a-number", "NaN", "nan", "Inf", "+Inf", "-Inf"} {
		if got := ParseDecimal(in); got != nil {
			t.Errorf("ParseDecimal(%q) = %v, want nil", in, *got)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	if got := FormatDecimal(Float(12.5)); got != "12.5" {
		t.Errorf("FormatDecimal(12.5) = %q", got)
	}
	if got := FormatDecimal(nil); got != "" {
		t.Errorf("FormatDecimal(nil) = %q, want empty", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(600); got != "600.00" {
		t.Errorf("FormatAmount(600) = %q, want 600.00", got)
	}
}
