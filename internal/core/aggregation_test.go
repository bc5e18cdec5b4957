package core

import (
	"reflect"
	"testing"
)

func TestCategoryTotals(t *testing.T) {
	records := []Activity{
		{ID: "1", Title: "Read", Category: "Study", Minutes: 30},
		{ID: "2", Title: "Gym", Category: "Health", Minutes: 45},
		{ID: "3", Title: "Write", Category: "Study", Minutes: 20},
	}
	got := CategoryTotals(records)
	want := []CategoryMinutes{{"Study", 50}, {"Health", 45}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if n := DistinctCategoryCount(records); n != 2 {
		t.Fatalf("distinct=%d want 2", n)
	}
}

func TestSortedByDurationDescendingIsStable(t *testing.T) {
	records := []Activity{
		{ID: "A", Title: "A", Minutes: 30},
		{ID: "B", Title: "B", Minutes: 30},
		{ID: "C", Title: "C", Minutes: 10},
		{ID: "D", Title: "D", Minutes: 60},
	}
	got := SortedByDurationDescending(records)
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"D", "A", "B", "C"}) {
		t.Fatalf("order=%v", ids)
	}
	if records[0].ID != "A" || records[3].ID != "D" {
		t.Fatalf("input was reordered")
	}
}

func TestTimelineLines(t *testing.T) {
	records := []Activity{
		{Title: "Read", Minutes: 30},
		{Title: "Gym", Minutes: 45},
	}
	want := []string{"Gym — 45 min", "Read — 30 min"}
	if got := TimelineLines(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCategoryShares(t *testing.T) {
	records := []Activity{
		{Category: "Work", Minutes: 100},
		{Category: "Sleep", Minutes: 200},
	}
	shares := CategoryShares(records)
	if len(shares) != 2 {
		t.Fatalf("len=%d", len(shares))
	}
	if shares[0].Percent.String() != "33.3" || shares[1].Percent.String() != "66.7" {
		t.Fatalf("got %s and %s", shares[0].Percent, shares[1].Percent)
	}
	if got := CategoryShares(nil); len(got) != 0 {
		t.Fatalf("expected no shares for empty day")
	}
}

func TestBuildAnalysis(t *testing.T) {
	records := []Activity{
		{Title: "Read", Category: "Study", Minutes: 30},
		{Title: "Gym", Category: "Health", Minutes: 45},
		{Title: "Write", Category: "Study", Minutes: 20},
	}
	a := BuildAnalysis(records)
	if a.Total != 95 || a.Count != 3 || a.DistinctCategories != 2 {
		t.Fatalf("unexpected header numbers %+v", a)
	}
	wantPie := []ChartPoint{{"Study", 50}, {"Health", 45}}
	if !reflect.DeepEqual(a.Pie, wantPie) {
		t.Fatalf("pie=%v", a.Pie)
	}
	wantBar := []ChartPoint{{"Gym", 45}, {"Read", 30}, {"Write", 20}}
	if !reflect.DeepEqual(a.Bar, wantBar) {
		t.Fatalf("bar=%v", a.Bar)
	}
	if len(a.Timeline) != 3 || a.Timeline[0] != "Gym — 45 min" {
		t.Fatalf("timeline=%v", a.Timeline)
	}
}
