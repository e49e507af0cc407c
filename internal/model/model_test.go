package model

import (
	"testing"
	"time"

	"github.com/halfdome/confwatch/internal/countdown"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"GopherCon", "gophercon"},
		{"Strange Loop", "strange-loop"},
		{"KubeCon + CloudNativeCon", "kubecon-cloudnativecon"},
		{"!!Con", "con"},
		{"  spaced   out  ", "spaced-out"},
		{"FOSDEM'26", "fosdem-26"},
		{"Ünicode Fest", "nicode-fest"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := slugify(tt.input)
			if got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		year int
		want string
	}{
		{"Strange Loop", 2026, "strange-loop-2026"},
		{"GopherCon", 0, "gophercon"},
		{"RustConf", 2025, "rustconf-2025"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DeriveID(tt.name, tt.year); got != tt.want {
				t.Errorf("DeriveID(%q, %d) = %q, want %q", tt.name, tt.year, got, tt.want)
			}
		})
	}
}

func TestConference_Validate(t *testing.T) {
	valid := Conference{ID: "gophercon-2026", Name: "GopherCon"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name string
		conf Conference
	}{
		{"missing name", Conference{ID: "x-2026"}},
		{"blank name", Conference{ID: "x-2026", Name: "   "}},
		{"missing id", Conference{Name: "GopherCon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.conf.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestConference_Year(t *testing.T) {
	deadline, err := countdown.Parse("2026-02-15", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	tests := []struct {
		name string
		conf Conference
		want int
	}{
		{
			name: "from start date",
			conf: Conference{Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
			want: 2026,
		},
		{
			name: "from deadline when no dates",
			conf: Conference{CFP: deadline},
			want: 2026,
		},
		{
			name: "unknown",
			conf: Conference{CFP: countdown.Deadline{TBA: true}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conf.Year(); got != tt.want {
				t.Errorf("Year() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewSavedConference(t *testing.T) {
	conf := Conference{ID: "gophercon-2026", Name: "GopherCon"}
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	saved := NewSavedConference(conf, now)
	if saved.ID != conf.ID {
		t.Errorf("ID = %q, want %q", saved.ID, conf.ID)
	}
	if !saved.SavedAt.Equal(now) {
		t.Errorf("SavedAt = %v, want %v", saved.SavedAt, now)
	}
}

func TestSortByDeadline(t *testing.T) {
	deadlineConf := func(id, raw string) Conference {
		cfp, _ := countdown.Parse(raw, "UTC") // invalid fixtures are intentional
		return Conference{ID: id, Name: id, CFP: cfp, CFPRaw: raw}
	}

	confs := []Conference{
		deadlineConf("broken", "???"),
		deadlineConf("tba", "TBA"),
		deadlineConf("later", "2026-06-01"),
		deadlineConf("sooner", "2026-03-01"),
	}

	SortByDeadline(confs)

	want := []string{"sooner", "later", "tba", "broken"}
	for i, id := range want {
		if confs[i].ID != id {
			t.Fatalf("order[%d] = %s, want %s", i, confs[i].ID, id)
		}
	}
}

func TestSortByDeadline_TiesBreakByName(t *testing.T) {
	deadlineConf := func(name string) Conference {
		cfp, _ := countdown.Parse("2026-03-01", "UTC")
		return Conference{ID: name, Name: name, CFP: cfp}
	}

	confs := []Conference{deadlineConf("RustConf"), deadlineConf("GopherCon")}
	SortByDeadline(confs)

	if confs[0].Name != "GopherCon" {
		t.Errorf("tie order = %s first, want GopherCon", confs[0].Name)
	}
}
