package services

import "testing"

func TestMessageKeys(t *testing.T) {
	if got := OrderingGroup("p1"); got != "seed-p1" {
		t.Fatalf("unexpected ordering group %s", got)
	}
	if got := DeduplicationKey("p1", "c1"); got != "seed-p1-c1" {
		t.Fatalf("unexpected deduplication key %s", got)
	}
	if DeduplicationKey("p1", "c1") == DeduplicationKey("p1", "c2") {
		t.Fatalf("expected distinct keys per declaration")
	}
}
