package setx

import "testing"

func TestContains(t *testing.T) {
	tests := []struct {
		name    string
		slice   []string
		element string
		want    bool
	}{
		{"present", []string{"a", "b", "c"}, "b", true},
		{"absent", []string{"a", "b", "c"}, "z", false},
		{"empty", nil, "a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.slice, tt.element); got != tt.want {
				t.Errorf("Contains(%v, %q) = %v, want %v", tt.slice, tt.element, got, tt.want)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]int{1, 2, 2, 3, 1, 4})
	want := []int{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Unique() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Unique()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestUnion(t *testing.T) {
	got := Union([]string{"a", "b"}, []string{"b", "c"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Union() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Union()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIntersect(t *testing.T) {
	got := Intersect([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	want := []string{"b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Intersect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Intersect()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDifference(t *testing.T) {
	got := Difference([]string{"a", "b", "c"}, []string{"b"})
	want := []string{"a", "c"}
	if len(got) != len(want) {
		t.Fatalf("Difference() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Difference()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"same order", []string{"a", "b"}, []string{"a", "b"}, true},
		{"different order", []string{"a", "b"}, []string{"b", "a"}, true},
		{"with duplicates", []string{"a", "a", "b"}, []string{"a", "b"}, true},
		{"different sets", []string{"a", "b"}, []string{"a", "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	if !Overlaps([]string{"a", "b"}, []string{"b", "c"}) {
		t.Error("Overlaps() = false, want true for shared element")
	}
	if Overlaps([]string{"a"}, []string{"b"}) {
		t.Error("Overlaps() = true, want false for disjoint sets")
	}
}

func TestSubsetOf(t *testing.T) {
	if !SubsetOf([]string{"a", "b"}, []string{"a", "b", "c"}) {
		t.Error("SubsetOf() = false, want true")
	}
	if SubsetOf([]string{"a", "d"}, []string{"a", "b", "c"}) {
		t.Error("SubsetOf() = true, want false")
	}
}
