package domain

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"current_draft": StatusDraft,
		" PUBLIC ":      StatusPublic,
		"old_version":   StatusOldVersion,
	}
	for input, want := range cases {
		got, ok := ParseStatus(input)
		if !ok || got != want {
			t.Fatalf("ParseStatus(%q) = %q,%v want %q", input, got, ok, want)
		}
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestPublishRequiresDraft(t *testing.T) {
	next, err := Publish(StatusDraft)
	if err != nil || next != StatusPublic {
		t.Fatalf("expected draft to publish, got %q %v", next, err)
	}

	for _, status := range []Status{StatusPublic, StatusOldVersion} {
		next, err := Publish(status)
		if err == nil {
			t.Fatalf("expected error publishing %q", status)
		}
		if next != status {
			t.Fatalf("expected status to remain %q, got %q", status, next)
		}
		if !IsVersionStateError(err) {
			t.Fatalf("expected version state error, got %v", err)
		}
		if !errors.Is(err, ErrNotDraft) {
			t.Fatalf("expected ErrNotDraft source, got %v", err)
		}
	}
}

func TestDemoteOnlyAffectsPublic(t *testing.T) {
	if Demote(StatusPublic) != StatusOldVersion {
		t.Fatal("expected public to demote to old version")
	}
	if Demote(StatusDraft) != StatusDraft {
		t.Fatal("expected draft to be untouched")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cfg := NewConfigurationError(ErrUnknownTheme, "unknown theme")
	if !IsConfigurationError(cfg) || IsVersionStateError(cfg) {
		t.Fatalf("unexpected classification for %v", cfg)
	}
	if !goerrors.IsCategory(cfg, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", cfg)
	}

	val := NewValidationError(errors.New("row full"), "row full")
	if !IsValidationError(val) {
		t.Fatalf("expected validation error, got %v", val)
	}
	if NewValidationError(nil, "noop") != nil {
		t.Fatal("expected nil source to produce nil error")
	}
}
