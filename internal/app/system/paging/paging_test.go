package paging_test

import (
	"net/http/httptest"
	"testing"

	"github.com/corefield/opsdesk/internal/app/system/paging"
)

func TestParseStart(t *testing.T) {
	cases := []struct {
		url  string
		want int
	}{
		{"/employees", 1},
		{"/employees?start=51", 51},
		{"/employees?start=0", 1},
		{"/employees?start=-3", 1},
		{"/employees?start=abc", 1},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", tc.url, nil)
		if got := paging.ParseStart(r); got != tc.want {
			t.Errorf("ParseStart(%s): got %d, want %d", tc.url, got, tc.want)
		}
	}
}

func TestTrim(t *testing.T) {
	rows := make([]int, paging.PageSize+1)
	if !paging.Trim(&rows) {
		t.Error("expected hasNext for an overfull page")
	}
	if len(rows) != paging.PageSize {
		t.Errorf("len after trim: got %d, want %d", len(rows), paging.PageSize)
	}

	short := []int{1, 2, 3}
	if paging.Trim(&short) {
		t.Error("unexpected hasNext for a short page")
	}
}

func TestComputeRange(t *testing.T) {
	r := paging.ComputeRange(51, 20)
	if r.Start != 51 || r.End != 70 {
		t.Errorf("range: %+v", r)
	}
	if r.PrevStart != 1 || r.NextStart != 71 {
		t.Errorf("links: %+v", r)
	}

	empty := paging.ComputeRange(1, 0)
	if empty.Start != 0 || empty.End != 0 {
		t.Errorf("empty range: %+v", empty)
	}
}
