package ddns_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Travis-Britz/route53-ddns"
	"github.com/go-logr/logr/testr"
)

func TestNeedsUpdate(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		ip     string
		want   bool
	}{
		{"matches", []string{"1.2.3.4"}, "1.2.3.4", false},
		{"differs", []string{"1.2.3.4"}, "5.6.7.8", true},
		{"all values match", []string{"1.2.3.4", "1.2.3.4"}, "1.2.3.4", false},
		{"extra value after match", []string{"1.2.3.4", "9.9.9.9"}, "1.2.3.4", true},
		{"extra value before match", []string{"9.9.9.9", "1.2.3.4"}, "1.2.3.4", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			p.sets["Z123"][1].Values = tt.values

			got, err := ddns.NeedsUpdate(context.Background(), p, "Z123", tt.ip, "example.com", "home", testr.New(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NeedsUpdate with %v and ip %s: got %v, want %v", tt.values, tt.ip, got, tt.want)
			}
		})
	}
}

func TestNeedsUpdateSkipsOtherNames(t *testing.T) {
	p := newFakeProvider()
	p.sets["Z123"] = []ddns.RecordSet{
		{Name: "home.example.com.example.com.", Type: ddns.RecordTypeA, Values: []string{"9.9.9.9"}},
		{Name: "home.example.com", Type: ddns.RecordTypeA, Values: []string{"9.9.9.9"}},
		{Name: "home.example.com.", Type: "TXT", Values: []string{`"hello"`}},
		{Name: "home.example.com.", Type: ddns.RecordTypeA, Values: []string{"1.2.3.4"}},
		{Name: "home.example.com.", Type: ddns.RecordTypeA, Values: []string{"8.8.8.8"}},
	}

	got, err := ddns.NeedsUpdate(context.Background(), p, "Z123", "1.2.3.4", "example.com", "home", testr.New(t))
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Fatal("Expected the first exact match to be used and found up to date")
	}
}

func TestNeedsUpdateRecordNotFound(t *testing.T) {
	p := newFakeProvider()
	p.sets["Z123"] = p.sets["Z123"][:1]

	_, err := ddns.NeedsUpdate(context.Background(), p, "Z123", "1.2.3.4", "example.com", "home", testr.New(t))
	if !errors.Is(err, ddns.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound; got %v", err)
	}
	if p.batchCount() != 0 {
		t.Fatalf("Expected no changes to be submitted; got %d", p.batchCount())
	}
}

func TestNeedsUpdateEmptyRecord(t *testing.T) {
	p := newFakeProvider()
	p.sets["Z123"][1].Values = nil

	_, err := ddns.NeedsUpdate(context.Background(), p, "Z123", "1.2.3.4", "example.com", "home", testr.New(t))
	if !errors.Is(err, ddns.ErrEmptyRecord) {
		t.Fatalf("Expected ErrEmptyRecord; got %v", err)
	}
}

func TestNeedsUpdateProviderError(t *testing.T) {
	p := newFakeProvider()
	p.recordErr = errors.New("i/o timeout")

	_, err := ddns.NeedsUpdate(context.Background(), p, "Z123", "1.2.3.4", "example.com", "home", testr.New(t))
	if !errors.Is(err, ddns.ErrNetwork) {
		t.Fatalf("Expected ErrNetwork; got %v", err)
	}
}

func TestFQDN(t *testing.T) {
	tests := []struct{ sub, domain, want string }{
		{"home", "example.com", "home.example.com."},
		{"home", "example.com.", "home.example.com."},
		{"a.b", "example.co.uk", "a.b.example.co.uk."},
	}
	for _, tt := range tests {
		if got := ddns.FQDN(tt.sub, tt.domain); got != tt.want {
			t.Errorf("FQDN(%q, %q): got %q, want %q", tt.sub, tt.domain, got, tt.want)
		}
	}
}
