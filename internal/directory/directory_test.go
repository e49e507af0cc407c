package directory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func TestLoad_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "2026.yaml", `
- id: gophercon-2026
  name: GopherCon
  url: https://www.gophercon.com
  cfpUrl: https://www.gophercon.com/cfp
  cfpDeadline: "2026-02-15 23:59:59"
  timezone: America/Denver
  startDate: 2026-09-12
  endDate: 2026-09-15
  city: Denver
  country: USA
- name: Strange Loop
  cfpDeadline: "2026-03-01"
  online: true
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
	if len(res.Conferences) != 2 {
		t.Fatalf("Conferences = %d, want 2", len(res.Conferences))
	}

	gopher := res.Conferences[0]
	if gopher.ID != "gophercon-2026" {
		t.Errorf("ID = %q, want gophercon-2026", gopher.ID)
	}
	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	wantAt := time.Date(2026, 2, 15, 23, 59, 59, 0, denver)
	if !gopher.CFP.At.Equal(wantAt) {
		t.Errorf("CFP.At = %v, want %v", gopher.CFP.At, wantAt)
	}
	if gopher.Place != "Denver, USA" {
		t.Errorf("Place = %q, want %q", gopher.Place, "Denver, USA")
	}
	if gopher.Start.IsZero() || gopher.Start.Year() != 2026 {
		t.Errorf("Start = %v, want a 2026 date", gopher.Start)
	}

	loop := res.Conferences[1]
	if loop.ID != "strange-loop-2026" {
		t.Errorf("derived ID = %q, want strange-loop-2026", loop.ID)
	}
	if loop.Place != "Online" {
		t.Errorf("Place = %q, want Online", loop.Place)
	}
	// Date-only deadline means end of that day, resolved anywhere on Earth.
	if hh, mm, ss := loop.CFP.At.Clock(); hh != 23 || mm != 59 || ss != 59 {
		t.Errorf("date-only deadline resolved to %02d:%02d:%02d, want 23:59:59", hh, mm, ss)
	}
}

func TestLoad_MissingDeadlineIsTBA(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "tba.yaml", `
- name: Mystery Conf
- name: Announced Conf
  cfpDeadline: TBA
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 2 {
		t.Fatalf("Conferences = %d, want 2", len(res.Conferences))
	}
	for _, conf := range res.Conferences {
		if !conf.CFP.TBA {
			t.Errorf("%s: deadline should be TBA", conf.Name)
		}
	}
}

func TestLoad_InvalidDeadlineKeptWithWarning(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "bad.yaml", `
- name: Broken Conf
  cfpDeadline: "sometime next spring"
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 1 {
		t.Fatalf("Conferences = %d, want 1 (degraded records stay listed)", len(res.Conferences))
	}

	conf := res.Conferences[0]
	if !conf.CFP.Invalid {
		t.Error("deadline should carry the Invalid flag")
	}
	if conf.CFPRaw != "sometime next spring" {
		t.Errorf("CFPRaw = %q, want the original text", conf.CFPRaw)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "invalid CFP deadline") {
		t.Errorf("Warnings = %v, want one invalid-deadline warning", res.Warnings)
	}
}

func TestLoad_UnknownTimezoneFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "tz.yaml", `
- name: Far Away Conf
  cfpDeadline: "2026-06-01"
  timezone: Mars/Olympus_Mons
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 1 {
		t.Fatalf("Conferences = %d, want 1", len(res.Conferences))
	}
	if !res.Conferences[0].CFP.ZoneFallback {
		t.Error("deadline should be flagged as a zone fallback")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "unknown timezone") {
		t.Errorf("Warnings = %v, want one timezone warning", res.Warnings)
	}
}

func TestLoad_RecordWithoutNameDropped(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "anon.yaml", `
- cfpDeadline: "2026-06-01"
  city: Nowhere
- name: Named Conf
  cfpDeadline: "2026-06-01"
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 1 || res.Conferences[0].Name != "Named Conf" {
		t.Errorf("Conferences = %+v, want only the named record", res.Conferences)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "without a name") {
		t.Errorf("Warnings = %v, want one dropped-record warning", res.Warnings)
	}
}

func TestLoad_DirectoryMergesAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "a.yaml", `
- id: shared-conf
  name: First Version
  cfpDeadline: "2026-05-01"
`)
	writeYAML(t, dir, "b.yaml", `
- id: shared-conf
  name: Second Version
  cfpDeadline: "2026-05-01"
- id: only-b
  name: Only In B
  cfpDeadline: "2026-05-02"
`)
	writeYAML(t, dir, "notes.txt", "not conference data")

	res, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 2 {
		t.Fatalf("Conferences = %d, want 2", len(res.Conferences))
	}

	// File-name order makes a.yaml's record the first seen.
	if res.Conferences[0].Name != "First Version" {
		t.Errorf("kept %q, want the first record seen", res.Conferences[0].Name)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "duplicate conference id") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a duplicate-id warning", res.Warnings)
	}
}

func TestLoad_BrokenFileDegradesToWarning(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "good.yaml", `
- name: Good Conf
  cfpDeadline: "2026-05-01"
`)
	writeYAML(t, dir, "broken.yaml", "[unterminated")

	res, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 1 || res.Conferences[0].Name != "Good Conf" {
		t.Errorf("Conferences = %+v, want the good file's record", res.Conferences)
	}

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "broken.yaml") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want one naming broken.yaml", res.Warnings)
	}
}

func TestLoad_SingleRecordFileShape(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "solo.yaml", `
name: Solo Conf
cfpDeadline: "2026-05-01"
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 1 || res.Conferences[0].Name != "Solo Conf" {
		t.Errorf("Conferences = %+v, want the single bare record", res.Conferences)
	}
}

func TestLoad_UnknownFieldsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "extra.yaml", `
- name: Future Format Conf
  cfpDeadline: "2026-05-01"
  talks: 120
  sponsors:
    - name: ACME
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 1 {
		t.Errorf("Conferences = %d, want 1", len(res.Conferences))
	}
}

func TestLoad_FlexibleDateForms(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "dates.yaml", `
- name: ISO Conf
  cfpDeadline: "2026-05-01"
  startDate: "2026-09-12T00:00:00Z"
- name: Spelled Conf
  cfpDeadline: "2026-05-01"
  startDate: "Sep 12, 2026"
`)

	res, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(res.Conferences) != 2 {
		t.Fatalf("Conferences = %d, want 2", len(res.Conferences))
	}
	for _, conf := range res.Conferences {
		if conf.Start.Year() != 2026 || conf.Start.Month() != time.September || conf.Start.Day() != 12 {
			t.Errorf("%s: Start = %v, want 2026-09-12", conf.Name, conf.Start)
		}
	}
}

func TestLoad_MissingPathFails(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load of a missing path should fail")
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "a.yaml", `
- name: Conf
  cfpDeadline: "2026-05-01"
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, dir); err == nil {
		t.Fatal("Load should respect a cancelled context")
	}
}
