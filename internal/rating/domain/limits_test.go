package domain

import (
	"errors"
	"testing"
)

func TestCheckCoverage(t *testing.T) {
	limits := PolicyLimits{MaximumCover: dec("50000000")}

	tests := []struct {
		name      string
		requested string
		wantErr   bool
	}{
		{name: "零保额跳过校验", requested: "0"},
		{name: "上限以内", requested: "49999999"},
		{name: "恰好为上限", requested: "50000000"},
		{name: "超过上限", requested: "50000001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.CheckCoverage(dec(tt.requested))
			if tt.wantErr {
				if !errors.Is(err, ErrCoverageExceedsMaximum) {
					t.Fatalf("CheckCoverage(%s) error = %v, want ErrCoverageExceedsMaximum", tt.requested, err)
				}
				return
			}
			if err != nil {
				t.Errorf("CheckCoverage(%s) unexpected error: %v", tt.requested, err)
			}
		})
	}
}

func TestCheckCoverageUnlimited(t *testing.T) {
	var limits PolicyLimits
	if err := limits.CheckCoverage(dec("999999999")); err != nil {
		t.Errorf("zero MaximumCover should not restrict coverage, got %v", err)
	}
}

func TestEnforceMinimum(t *testing.T) {
	limits := PolicyLimits{MinimumPremium: dec("25000")}

	tests := []struct {
		name        string
		total       string
		want        string
		wantApplied bool
	}{
		{name: "低于下限托底", total: "18000", want: "25000", wantApplied: true},
		{name: "恰好等于下限", total: "25000", want: "25000", wantApplied: false},
		{name: "高于下限不变", total: "30000", want: "30000", wantApplied: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := limits.EnforceMinimum(dec(tt.total))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("EnforceMinimum(%s) = %s, want %s", tt.total, got, tt.want)
			}
			if applied != tt.wantApplied {
				t.Errorf("EnforceMinimum(%s) applied = %v, want %v", tt.total, applied, tt.wantApplied)
			}
		})
	}
}

func TestEnforceMinimumMonotonic(t *testing.T) {
	// 托底后的保费不随输入增大而减小
	limits := PolicyLimits{MinimumPremium: dec("25000")}
	inputs := []string{"0", "10000", "24999.99", "25000", "25000.01", "100000"}

	prev := dec("-1")
	for _, in := range inputs {
		got, _ := limits.EnforceMinimum(dec(in))
		if got.LessThan(prev) {
			t.Fatalf("EnforceMinimum not monotonic: f(%s) = %s < previous %s", in, got, prev)
		}
		prev = got
	}
}
