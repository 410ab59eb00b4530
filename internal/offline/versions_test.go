package offline

import "testing"

func TestCompareVersions(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha.2", "1.0.0-alpha.10", -1},
		{"1.0.0-beta", "1.0.0-alpha", 1},
		{"not-a-version", "0.0.1", -1},
		{"0.0.1", "not-a-version", 1},
		{"a-tag", "b-tag", -1},
	}

	for _, tc := range testCases {
		if got := CompareVersions(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLatestVersion(t *testing.T) {
	if _, ok := LatestVersion(nil); ok {
		t.Fatalf("empty input should have no latest")
	}
	input := []string{"0.9.0", "1.2.3", "1.2.3-rc.1", "1.2.10", "garbage"}
	latest, ok := LatestVersion(input)
	if !ok || latest != "1.2.10" {
		t.Fatalf("expected 1.2.10, got %q", latest)
	}
	if input[0] != "0.9.0" {
		t.Fatalf("LatestVersion should not reorder its input")
	}
}

func TestVersionSetSorted(t *testing.T) {
	set := NewVersionSet("2.0.0", "1.0.0", "1.0.0", "10.0.0")
	got := set.Sorted()
	want := []string{"1.0.0", "2.0.0", "10.0.0"}
	if !equalKeys(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
