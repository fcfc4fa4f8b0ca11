package reconcile

import "testing"

func comparator() Comparator {
	return Comparator{Tolerance: 1e-4}
}

func TestEquivalent(t *testing.T) {
	c := comparator()
	tests := []struct {
		a, b string
		want bool
	}{
		{"<0.05", "<0.050", true},
		{"＜0.05", "<0.05", true},
		{"0", "未检出", true},
		{"未检出", "0", true},
		{"0.30", "0.3", true},
		{"7.52", "7.52", true},
		{"7.52", "7.53", false},
		{"未检出", "0.05", false},
		{"", "0.30", true},
		{"0.30", "", true},
		{"0.30、", "0.30", true},
	}
	for _, tt := range tests {
		if got := c.Equivalent(tt.a, tt.b); got != tt.want {
			t.Errorf("Equivalent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStrictMatch(t *testing.T) {
	c := comparator()
	tests := []struct {
		a, b string
		want bool
	}{
		{"0.30", "0.30", true},
		{"0.30", "0.3", false},
		{"＜0.05", "<0.05", true},
		{"0", "未检出", true},
		{"", "anything", true},
	}
	for _, tt := range tests {
		if got := c.StrictMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("StrictMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsValueDifference(t *testing.T) {
	c := comparator()
	tests := []struct {
		a, b string
		want bool
	}{
		// Differing trailing zeros are a formatting discrepancy.
		{"0.30", "0.3", false},
		{"0.30", "0.50", true},
		{"<0.05", "0.05", false},
		// Unparseable text never counts as a numeric difference.
		{"未检出", "0.05", false},
		{"合格", "不合格", false},
	}
	for _, tt := range tests {
		if got := c.IsValueDifference(tt.a, tt.b); got != tt.want {
			t.Errorf("IsValueDifference(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDigitCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"17.6", 3},
		{"7.63", 3},
		{"0.64", 3},
		{"1.00", 3},
		{"0.005", 4},
		{"100", 3},
		{"-0.5", 2},
		{"+12", 2},
	}
	for _, tt := range tests {
		if got := DigitCount(tt.in); got != tt.want {
			t.Errorf("DigitCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"GB/T 5750.4－2006（色度）", "GB/T 5750.4-2006(色度)"},
		{"电感耦合等离子体\n发射光谱法", "电感耦合等离子体 发射光谱法"},
		{"滴定法：第一部分", "滴定法:第一部分"},
		{"甲法、乙法", "甲法,乙法"},
		{"GB 5750　检验方法", "GB 5750检验方法"},
	}
	for _, tt := range tests {
		if got := NormalizeMethod(tt.a); got != NormalizeMethod(tt.b) {
			t.Errorf("NormalizeMethod(%q) = %q, want equal to NormalizeMethod(%q) = %q",
				tt.a, got, tt.b, NormalizeMethod(tt.b))
		}
	}
}

func TestStripParens(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"高锰酸盐指数(以O2计)", "高锰酸盐指数"},
		{"总硬度（以CaCO3计）", "总硬度"},
		{"pH", "pH"},
	}
	for _, tt := range tests {
		if got := StripParens(tt.in); got != tt.want {
			t.Errorf("StripParens(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
