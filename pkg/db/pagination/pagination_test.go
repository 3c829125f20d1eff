package pagination

import "testing"

type item struct {
	ID string
}

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2026-10-14T12:00:00Z"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cursor, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cursor.ID != "42" || cursor.CreatedAt != "2026-10-14T12:00:00Z" {
		t.Fatalf("unexpected cursor: %+v", cursor)
	}
}

func TestBuildCursorPageInfo(t *testing.T) {
	data := []*item{{ID: "3"}, {ID: "2"}, {ID: "1"}}
	info := BuildCursorPageInfo(data, 2, func(i *item) string { return i.ID })
	if !info.HasMore {
		t.Fatalf("expected more pages")
	}
	if info.NextPageToken != "2" {
		t.Fatalf("expected cursor from last visible item, got %q", info.NextPageToken)
	}

	info = BuildCursorPageInfo(data[:1], 2, func(i *item) string { return i.ID })
	if info.HasMore {
		t.Fatalf("expected last page")
	}
}

func TestNormalizePageSize(t *testing.T) {
	cases := []struct {
		size, def, want int32
	}{
		{size: 0, def: 50, want: 50},
		{size: -3, def: 10, want: 10},
		{size: 20, def: 50, want: 20},
		{size: 250, def: 50, want: 250},
		{size: 280, def: 50, want: MaxPageSize},
		{size: 0, def: 400, want: MaxPageSize},
	}
	for _, tc := range cases {
		if got := NormalizePageSize(tc.size, tc.def); got != tc.want {
			t.Fatalf("NormalizePageSize(%d, %d) = %d, want %d", tc.size, tc.def, got, tc.want)
		}
	}
}

func TestBuildCursorPageInfoWithCappedLookahead(t *testing.T) {
	data := make([]*item, MaxPageSize+1)
	for i := range data {
		data[i] = &item{ID: string(rune('a' + i%26))}
	}
	info := BuildCursorPageInfo(data, NormalizePageSize(280, 50), func(i *item) string { return i.ID })
	if !info.HasMore {
		t.Fatalf("expected more pages when the lookahead row is present")
	}
	if info.NextPageToken != data[MaxPageSize-1].ID {
		t.Fatalf("expected cursor from row %d, got %q", MaxPageSize-1, info.NextPageToken)
	}
}
