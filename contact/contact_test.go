package contact

import "testing"

func TestExtractFromLines(t *testing.T) {
	lines := []string{
		"JOHN SMITH",
		"Senior Backend Engineer",
		"john.smith@example.com | +1 415-555-0134",
		"San Francisco, CA",
		"linkedin.com/in/johnsmith · github.com/jsmith",
		"SUMMARY",
		"An engineer who writes about experience at acme.example.org.",
	}

	c := NewExtractor().ExtractFromLines(lines)

	if c.Name != "JOHN SMITH" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.Email != "john.smith@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.Phone != "+1 415-555-0134" {
		t.Errorf("Phone = %q", c.Phone)
	}
	if c.Location != "San Francisco, CA" {
		t.Errorf("Location = %q", c.Location)
	}
	if c.LinkedIn != "linkedin.com/in/johnsmith" {
		t.Errorf("LinkedIn = %q", c.LinkedIn)
	}
	if c.GitHub != "github.com/jsmith" {
		t.Errorf("GitHub = %q", c.GitHub)
	}
}

func TestExtractMissingFieldsStayEmpty(t *testing.T) {
	c := NewExtractor().ExtractFromLines([]string{"EXPERIENCE", "Did backend work."})
	if c.Name != "" || c.Email != "" || c.Phone != "" || c.Location != "" {
		t.Fatalf("expected empty contact, got %+v", c)
	}
}

func TestLooksLikeName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"John Smith", true},
		{"JOHN SMITH", true},
		{"Maria de la Cruz", false}, // lowercase particles fail the shape test
		{"John", false},
		{"john smith", false},
		{"Call me at 555", false},
		{"Objective: backend roles", false},
	}
	for _, tt := range tests {
		if got := looksLikeName(tt.in); got != tt.want {
			t.Errorf("looksLikeName(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindPhoneRejectsShortNumbers(t *testing.T) {
	if got := findPhone("Room 412, built in 1999"); got != "" {
		t.Errorf("findPhone matched %q", got)
	}
	if got := findPhone("call 020 7946 0958 today"); got == "" {
		t.Error("valid phone not found")
	}
}
