// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import "testing"

func TestT_DefaultsToEnglish(t *testing.T) {
	localizer = nil

	got := T("maintain.done")
	if got != "maintenance complete" {
		t.Fatalf("T(maintain.done) = %q", got)
	}
}

func TestT_UnknownIDPassesThrough(t *testing.T) {
	Init("en")

	got := T("no.such.message")
	if got != "no.such.message" {
		t.Fatalf("expected unknown ID to pass through, got %q", got)
	}
}

func TestSetLang_German(t *testing.T) {
	SetLang("de")
	defer SetLang("en")

	got := T("maintain.done")
	if got != "Wartung abgeschlossen" {
		t.Fatalf("T(maintain.done) in de = %q", got)
	}
}

func TestSetLang_UnknownFallsBackToEnglish(t *testing.T) {
	SetLang("fr")
	defer SetLang("en")

	got := T("tables.header.table")
	if got != "TABLE" {
		t.Fatalf("expected English fallback, got %q", got)
	}
}
