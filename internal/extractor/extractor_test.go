package extractor

import (
	"reflect"
	"testing"
)

func TestExtractByCategory(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category Category
		want     string
	}{
		{"email", "contact me at john.doe@example.com now", CategoryEmail, "john.doe@example.com"},
		{"phone", "call 555-123-4567 anytime", CategoryPhone, "555-123-4567"},
		{"credit card", "card 4111111111111111 works", CategoryCreditCard, "4111111111111111"},
		{"ssn", "ssn is 123-45-6789", CategorySSN, "123-45-6789"},
		{"api key", "api_key: abcdef1234567890abcdef", CategoryAPIKey, "abcdef1234567890abcdef"},
		{"password", "password: hunter2secret", CategoryPassword, "hunter2secret"},
		{"secret labeled token", "token = supersecrettoken1234", CategorySecret, "supersecrettoken1234"},
		{"url", "check https://example.com for info", CategoryURL, "https://example.com"},
		{"ip address", "server at 192.168.1.100 is open", CategoryIPAddress, "192.168.1.100"},
		{"bitcoin", "send to 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", CategoryBitcoinAddress, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		{"ethereum", "wallet 0x742d35Cc6634C0532925a3b844Bc454e4438f44e here", CategoryEthereumAddress, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			values, ok := got[tt.category]
			if !ok {
				t.Fatalf("Extract(%q) did not find category %s, got %v", tt.text, tt.category, got)
			}
			found := false
			for _, v := range values {
				if v == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("Extract(%q)[%s] = %v, want to contain %q", tt.text, tt.category, values, tt.want)
			}
		})
	}
}

func TestExtractCredentialDump(t *testing.T) {
	got := Extract("admin@test.com:admin123")

	if _, ok := got[CategoryEmail]; !ok {
		t.Fatalf("expected an email match, got %v", got)
	}
	if got[CategoryEmail][0] != "admin@test.com" {
		t.Errorf("email = %q, want admin@test.com", got[CategoryEmail][0])
	}
	// The bare value after the colon carries no password label, so the
	// password pattern must not fire.
	if _, ok := got[CategoryPassword]; ok {
		t.Errorf("unexpected password match: %v", got[CategoryPassword])
	}
}

func TestExtractNoMatches(t *testing.T) {
	for _, text := range []string{"", "hello there, nothing sensitive here"} {
		if got := Extract(text); len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want empty", text, got)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "leak: admin@corp.example password: Sup3rSecret! from 10.0.0.1 via https://evil.example"
	first := Extract(text)
	second := Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	got := Extract("a@b.com twice a@b.com and once c@d.org")
	want := []string{"a@b.com", "c@d.org"}
	if !reflect.DeepEqual(got[CategoryEmail], want) {
		t.Errorf("emails = %v, want %v (distinct, first-seen order)", got[CategoryEmail], want)
	}
}

func TestCategoriesStableOrder(t *testing.T) {
	cats := Categories()
	if len(cats) != len(rules) {
		t.Fatalf("Categories() returned %d entries, want %d", len(cats), len(rules))
	}
	if cats[0] != CategoryEmail || cats[len(cats)-1] != CategoryEthereumAddress {
		t.Errorf("unexpected category order: %v", cats)
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		value string
		want  string
	}{
		{"short text returned whole", "password: abc123", "abc123", "password: abc123"},
		{"missing value falls back to head", "no such value here", "zzz", "no such value here"},
		{"empty value", "some text", "", "some text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.text, tt.value); got != tt.want {
				t.Errorf("Snippet(%q, %q) = %q, want %q", tt.text, tt.value, got, tt.want)
			}
		})
	}
}

func TestSnippetWindow(t *testing.T) {
	long := ""
	for i := 0; i < 20; i++ {
		long += "aaaaaaaaaa"
	}
	text := long + "NEEDLE" + long

	got := Snippet(text, "NEEDLE")
	wantLen := snippetRadius + len("NEEDLE") + snippetRadius
	if len(got) != wantLen {
		t.Errorf("snippet length = %d, want %d", len(got), wantLen)
	}
}
