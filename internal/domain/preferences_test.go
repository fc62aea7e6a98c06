package domain

import "testing"

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if p.SelectedSection != RouteHome || p.LastOpenedRecipeID != nil || p.Drafts == nil || len(p.Drafts) != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestPreferences_CopyOnWrite(t *testing.T) {
	base := DefaultPreferences().WithDraft(Draft{ID: "a", Name: "A"})

	added := base.WithDraft(Draft{ID: "b", Name: "B"})
	if len(base.Drafts) != 1 || len(added.Drafts) != 2 {
		t.Fatalf("WithDraft must not mutate receiver: base=%d added=%d", len(base.Drafts), len(added.Drafts))
	}

	removed := added.WithoutDraft("a")
	if _, ok := added.Drafts["a"]; !ok {
		t.Fatalf("WithoutDraft must not mutate receiver")
	}
	if _, ok := removed.Drafts["a"]; ok {
		t.Fatalf("draft a should be gone")
	}
	again := removed.WithoutDraft("a")
	if len(again.Drafts) != 1 {
		t.Fatalf("second removal should be a no-op, got %d drafts", len(again.Drafts))
	}

	id := int64(7)
	opened := base.WithLastOpenedRecipe(&id)
	id = 9
	if opened.LastOpenedRecipeID == nil || *opened.LastOpenedRecipeID != 7 {
		t.Fatalf("last opened id should be copied, got %v", opened.LastOpenedRecipeID)
	}
	if base.LastOpenedRecipeID != nil {
		t.Fatalf("receiver must stay untouched")
	}

	sec := base.WithSelectedSection(RouteBrowse)
	if sec.SelectedSection != RouteBrowse || base.SelectedSection != RouteHome {
		t.Fatalf("unexpected sections: %q / %q", sec.SelectedSection, base.SelectedSection)
	}
}

func TestDraftList_OrderedByEditDateDesc(t *testing.T) {
	p := DefaultPreferences().
		WithDraft(Draft{ID: "old", EditDate: 10}).
		WithDraft(Draft{ID: "new", EditDate: 30}).
		WithDraft(Draft{ID: "b", EditDate: 20}).
		WithDraft(Draft{ID: "a", EditDate: 20})

	got := p.DraftList()
	want := []string{"new", "a", "b", "old"}
	for i, d := range got {
		if d.ID != want[i] {
			t.Fatalf("DraftList()[%d] = %q; want %q", i, d.ID, want[i])
		}
	}
}
