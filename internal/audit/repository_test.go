package audit

import (
	"strings"
	"testing"
)

func TestBuildWindowQueryActorFilter(t *testing.T) {
	query, args := buildWindowQuery(TimelineFilters{Actor: "alice"}, 21, 0)
	if !strings.Contains(query, "u.username = $1") {
		t.Errorf("query missing username filter:\n%s", query)
	}
	if len(args) != 3 || args[0] != "alice" {
		t.Errorf("args = %v, want [alice 21 0]", args)
	}
}

func TestBuildWindowQuerySystemActorMatchesNullRows(t *testing.T) {
	query, args := buildWindowQuery(TimelineFilters{Actor: "system"}, 21, 0)
	if !strings.Contains(query, "a.user_id IS NULL") {
		t.Errorf("query does not select NULL-actor rows:\n%s", query)
	}
	if strings.Contains(query, "u.username =") {
		t.Errorf("query must not compare usernames for the system actor:\n%s", query)
	}
	// Only limit and offset are bound; "system" is not a username.
	if len(args) != 2 || args[0] != 21 || args[1] != 0 {
		t.Errorf("args = %v, want [21 0]", args)
	}
}

func TestBuildWindowQuerySequentialPlaceholders(t *testing.T) {
	query, args := buildWindowQuery(TimelineFilters{
		Actor:       "system",
		Action:      "CREATE",
		TargetTable: "users",
	}, 10, 20)
	for _, placeholder := range []string{"$1", "$2", "$3", "$4"} {
		if !strings.Contains(query, placeholder) {
			t.Errorf("query missing placeholder %s:\n%s", placeholder, query)
		}
	}
	if strings.Contains(query, "$5") {
		t.Errorf("query has a dangling placeholder:\n%s", query)
	}
	want := []any{"CREATE", "users", 10, 20}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}
