package domain

import (
	"errors"
	"testing"
)

func sampleClauses() []ClausePricing {
	return []ClausePricing{
		{Code: "MRe004", Name: "Strike Riot Civil Commotion", IsMandatory: true, Enabled: true, PricingType: PricingTypeFixed, PricingValue: dec("1500")},
		{Code: "MRe002", Name: "Cross Liability", Enabled: true, PricingType: PricingTypePercentage, PricingValue: dec("2.5")},
		{
			Code: "MRe112", Name: "Maintenance Visits", Enabled: true,
			PricingType: PricingTypeFixed, PricingValue: dec("500"),
			VariableOptions: []VariableOption{
				{Label: "12 months", Limits: "12", PricingType: PricingTypeFixed, Value: dec("800")},
				{Label: "24 months", Limits: "24", PricingType: PricingTypePercentage, Value: dec("1.2")},
			},
		},
		{Code: "MRe099", Name: "Disabled Clause", Enabled: false, PricingType: PricingTypeFixed, PricingValue: dec("300")},
	}
}

func TestClauseRegistryResolve(t *testing.T) {
	registry := NewClauseRegistry(sampleClauses())

	tests := []struct {
		name    string
		code    string
		want    string
		wantErr bool
	}{
		{name: "精确匹配", code: "MRe004", want: "MRe004"},
		{name: "大小写不敏感", code: "mre004", want: "MRe004"},
		{name: "去除首尾空白", code: "  MRe002  ", want: "MRe002"},
		{name: "未知代码", code: "MRe999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.Resolve(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrClauseNotFound) {
					t.Fatalf("Resolve(%q) error = %v, want ErrClauseNotFound", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.code, err)
			}
			if c.Code != tt.want {
				t.Errorf("Resolve(%q) code = %s, want %s", tt.code, c.Code, tt.want)
			}
		})
	}
}

func TestClauseRegistryDuplicateKeepsFirst(t *testing.T) {
	registry := NewClauseRegistry([]ClausePricing{
		{Code: "MRe010", Name: "First", Enabled: true, PricingType: PricingTypeFixed, PricingValue: dec("100")},
		{Code: "mre010", Name: "Second", Enabled: true, PricingType: PricingTypeFixed, PricingValue: dec("200")},
	})

	c, err := registry.Resolve("MRe010")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Name != "First" {
		t.Errorf("duplicate resolution name = %s, want First", c.Name)
	}
}

func TestClauseRegistryListing(t *testing.T) {
	registry := NewClauseRegistry(sampleClauses())

	mandatory := registry.ListMandatory()
	if len(mandatory) != 1 || mandatory[0].Code != "MRe004" {
		t.Errorf("ListMandatory = %v, want single MRe004", mandatory)
	}

	optional := registry.ListOptional()
	if len(optional) != 2 {
		t.Fatalf("ListOptional length = %d, want 2 (disabled clauses excluded)", len(optional))
	}
	for _, c := range optional {
		if c.Code == "MRe099" {
			t.Errorf("ListOptional contains disabled clause MRe099")
		}
	}
}

func TestClauseOption(t *testing.T) {
	registry := NewClauseRegistry(sampleClauses())
	c, err := registry.Resolve("MRe112")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	opt, ok := c.Option("12 MONTHS")
	if !ok {
		t.Fatal("Option lookup should be case insensitive")
	}
	if !opt.Value.Equal(dec("800")) {
		t.Errorf("option value = %s, want 800", opt.Value)
	}

	if _, ok := c.Option("36 months"); ok {
		t.Error("unknown option label should not resolve")
	}
}
