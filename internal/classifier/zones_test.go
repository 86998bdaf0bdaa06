package classifier

import "testing"

func TestDirectoryName(t *testing.T) {
	zones := Directory{
		"1":  "Front Door",
		"09": "Basement Window",
		"12": "Motion Hallway",
	}

	cases := []struct {
		zone int
		want string
	}{
		{1, "Front Door"},
		{9, "Basement Window"}, // zero-padded key resolves by integer value
		{12, "Motion Hallway"},
		{42, "Zone 42"},
	}

	for _, tc := range cases {
		if got := zones.Name(tc.zone); got != tc.want {
			t.Fatalf("Name(%d) = %q, want %q", tc.zone, got, tc.want)
		}
	}
}

func TestDirectoryNameEmpty(t *testing.T) {
	var zones Directory
	if got := zones.Name(5); got != "Zone 5" {
		t.Fatalf("nil directory Name(5) = %q, want Zone 5", got)
	}
	if got := (Directory{}).Name(5); got != "Zone 5" {
		t.Fatalf("empty directory Name(5) = %q, want Zone 5", got)
	}
}

func TestResolveZoneName(t *testing.T) {
	zones := Directory{"3": "Garage Door"}

	cases := []struct {
		id   string
		want string
	}{
		{"3", "Garage Door"},
		{"003", "Garage Door"},
		{" 3 ", "Garage Door"},
		{"8", "Zone 8"},
		{"garage", "Zone garage"},
	}

	for _, tc := range cases {
		if got := ResolveZoneName(zones, tc.id); got != tc.want {
			t.Fatalf("ResolveZoneName(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
