package migration

import "testing"

func TestAvailableVersions(t *testing.T) {
	versions, err := availableVersions()
	if err != nil {
		t.Fatalf("availableVersions: %v", err)
	}
	if len(versions) != 3 || versions[0] != 1 || versions[2] != 3 {
		t.Fatalf("versions = %v; want [1 2 3]", versions)
	}
}

func TestGetPreviousVersionFromDirty(t *testing.T) {
	prev, err := getPreviousVersionFromDirty(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prev != 2 {
		t.Errorf("prev = %d; want 2", prev)
	}

	if _, err := getPreviousVersionFromDirty(1); err == nil {
		t.Error("expected error when dirty at the first version")
	}
	if _, err := getPreviousVersionFromDirty(42); err == nil {
		t.Error("expected error for unknown version")
	}
}
