package document

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	doc, err := New("doc-1", "Chapter One", "alice", created)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if doc.ID() != "doc-1" || doc.Title() != "Chapter One" || doc.OwnerID() != "alice" {
		t.Errorf("unexpected document: %q %q %q", doc.ID(), doc.Title(), doc.OwnerID())
	}
	if doc.CreatedAt().Location() != time.UTC {
		t.Error("expected createdAt normalized to UTC")
	}
}

func TestNew_Invalid(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name          string
		id, title, by string
	}{
		{"missing id", "", "t", "alice"},
		{"missing title", "doc-1", "", "alice"},
		{"title too long", "doc-1", strings.Repeat("x", MaxTitleLen+1), "alice"},
		{"missing owner", "doc-1", "t", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.id, tc.title, tc.by, now); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWithTitle_DoesNotMutate(t *testing.T) {
	doc, _ := New("doc-1", "Old", "alice", time.Now())
	renamed := doc.WithTitle("New")

	if doc.Title() != "Old" {
		t.Errorf("original mutated: %q", doc.Title())
	}
	if renamed.Title() != "New" || renamed.ID() != "doc-1" {
		t.Errorf("unexpected copy: %q %q", renamed.ID(), renamed.Title())
	}
}

func TestNewVersion_BodyLimit(t *testing.T) {
	if _, err := NewVersion("v1", "doc-1", "draft", strings.Repeat("a", MaxBodyLen)); err != nil {
		t.Errorf("body at limit should pass: %v", err)
	}
	if _, err := NewVersion("v1", "doc-1", "draft", strings.Repeat("a", MaxBodyLen+1)); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestVersion_AsPublished(t *testing.T) {
	ver, err := NewVersion("v1", "doc-1", "draft", "body")
	if err != nil {
		t.Fatalf("NewVersion failed: %v", err)
	}
	if ver.Published() {
		t.Error("new version must start unpublished")
	}

	pub := ver.AsPublished()
	if !pub.Published() {
		t.Error("expected published copy")
	}
	if ver.Published() {
		t.Error("original mutated")
	}
	if pub.Name() != "draft" || pub.Body() != "body" {
		t.Errorf("publish changed content: %q %q", pub.Name(), pub.Body())
	}
}

func TestVersion_WithNameAndBody(t *testing.T) {
	ver, _ := NewVersion("v1", "doc-1", "draft", "body")
	renamed := ver.WithName("final")
	edited := renamed.WithBody("new body")

	if edited.Name() != "final" || edited.Body() != "new body" {
		t.Errorf("unexpected edit: %q %q", edited.Name(), edited.Body())
	}
	if edited.DocumentID() != "doc-1" {
		t.Errorf("document ID lost: %q", edited.DocumentID())
	}
}

func TestNewNote_EmptyTextAllowed(t *testing.T) {
	// Empty scratchpad nodes are legal; they only fail linkage qualification later.
	note, err := NewNote("n1", "doc-1", "")
	if err != nil {
		t.Fatalf("NewNote failed: %v", err)
	}
	if note.Text() != "" {
		t.Errorf("unexpected text: %q", note.Text())
	}
}

func TestNewNote_Invalid(t *testing.T) {
	if _, err := NewNote("", "doc-1", "x"); err == nil {
		t.Error("expected error for missing note ID")
	}
	if _, err := NewNote("n1", "", "x"); err == nil {
		t.Error("expected error for missing document ID")
	}
	if _, err := NewNote("n1", "doc-1", strings.Repeat("a", MaxBodyLen+1)); err == nil {
		t.Error("expected error for oversized note")
	}
}
