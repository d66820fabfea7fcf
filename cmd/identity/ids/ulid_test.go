package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestMake_EncodesCurrentTime(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	s := Make()
	after := time.Now()

	if len(s) != 26 {
		t.Fatalf("expected 26 chars, got %d", len(s))
	}

	id, err := ulid.Parse(s)
	if err != nil {
		t.Fatalf("ulid.Parse: %v", err)
	}
	got := ulid.Time(id.Time())
	if got.Before(before) || got.After(after) {
		t.Fatalf("timestamp %v outside [%v, %v]", got, before, after)
	}
}

func TestMake_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := Make()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}
