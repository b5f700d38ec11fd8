package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_AlgaeCollapse(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), Alive: 50, AlgaeMean: 0.4})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, Alive: 50, AlgaeMean: 0.1})
	if !hasBookmark(bookmarks, BookmarkAlgaeCollapse) {
		t.Error("expected algae_collapse bookmark")
	}

	// Peak resets after the collapse
	bookmarks = bd.Check(WindowStats{WindowEndTick: 360, Alive: 50, AlgaeMean: 0.09})
	if hasBookmark(bookmarks, BookmarkAlgaeCollapse) {
		t.Error("algae_collapse fired twice for the same drop")
	}
}

func TestBookmarkDetector_AlgaeBloom(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), FloorCoverage: 0.1})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, FloorCoverage: 0.6})
	if !hasBookmark(bookmarks, BookmarkAlgaeBloom) {
		t.Error("expected algae_bloom bookmark")
	}
}

func TestBookmarkDetector_DieOffAndExtinction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndTick: 60, Alive: 40})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 120, Alive: 30, Deaths: 10})
	if !hasBookmark(bookmarks, BookmarkDieOff) {
		t.Error("expected die_off bookmark")
	}

	bookmarks = bd.Check(WindowStats{WindowEndTick: 180, Alive: 0, Deaths: 30})
	if !hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}

	bookmarks = bd.Check(WindowStats{WindowEndTick: 240, Alive: 0})
	if hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("extinction fired for an already empty cavern")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var fired int
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick: int32(i * 60),
			Alive:         75,
			AlgaeMean:     0.3,
		})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable_ecosystem fired %d times, want exactly 1", fired)
	}
}
