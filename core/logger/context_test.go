package logger

import "testing"

func TestBuildRID(t *testing.T) {
	rid := BuildRID(42, 9, 7)
	if rid != "42:9:7" {
		t.Fatalf("unexpected rid: %q", rid)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	ctx = WithHandler(ctx, "search")

	if got := RIDFrom(ctx); got != "rid-123" {
		t.Errorf("rid: got %q", got)
	}
	if got := UpdateIDFrom(ctx); got != 42 {
		t.Errorf("update id: got %d", got)
	}
	if got := UserIDFrom(ctx); got != 7 {
		t.Errorf("user id: got %d", got)
	}
	if got := ChatIDFrom(ctx); got != 9 {
		t.Errorf("chat id: got %d", got)
	}
	if got := HandlerFrom(ctx); got != "search" {
		t.Errorf("handler: got %q", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "abc\x00def\tghi"
	got := SanitizeLimit(in, 6)
	if got != "abcdef" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
	if SanitizeLimit("anything", 0) != "" {
		t.Fatal("zero limit must yield empty string")
	}
}
