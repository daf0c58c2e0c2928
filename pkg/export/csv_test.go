package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/sessionaut/sessionaut/pkg/model"
)

func sampleSessions() []model.Session {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []model.Session{
		{
			ID:        "a1b2",
			Name:      "train-resnet",
			Image:     "cr.backend.ai/stable/python:3.11",
			Type:      "interactive",
			Status:    model.StatusRunning,
			AccessKey: "AKIATEST",
			Occupied:  map[string]string{"cpu": "4", "mem": "8589934592", "cuda.device": "1"},
			CreatedAt: &created,
		},
		{
			ID:     "c3d4",
			Name:   "batch, with comma",
			Image:  "cr.backend.ai/stable/ubuntu:22.04",
			Type:   "batch",
			Status: model.StatusTerminated,
		},
	}
}

func TestWriteSessionsCSVDefaults(t *testing.T) {
	var buf strings.Builder
	if err := WriteSessionsCSV(&buf, sampleSessions(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	if records[0][0] != "Name" || records[0][1] != "Status" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "train-resnet" || records[1][1] != "RUNNING" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[1][5] != "4" {
		t.Errorf("nested CPU slot not plucked: %v", records[1])
	}
	if records[2][0] != "batch, with comma" {
		t.Errorf("comma in value not preserved: %v", records[2])
	}
	if records[2][7] != "" {
		t.Errorf("missing created-at should be empty, got %q", records[2][7])
	}
}

func TestWriteSessionsCSVCustomFields(t *testing.T) {
	fields := []Field{
		{Header: "ID", Path: "id"},
		{Header: "GPU", Path: "occupiedSlots.cuda\\.device"},
	}

	var buf strings.Builder
	if err := WriteSessionsCSV(&buf, sampleSessions(), fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if records[0][0] != "ID" || records[0][1] != "GPU" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "a1b2" || records[1][1] != "1" {
		t.Errorf("unexpected row: %v", records[1])
	}
}

func TestWriteSessionsCSVEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteSessionsCSV(&buf, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected only a header line, got %d lines", len(lines))
	}
}

func TestDefaultFileName(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 5, 0, time.UTC)
	if got := DefaultFileName(now); got != "sessions-20260314-093005.csv" {
		t.Errorf("file name = %s", got)
	}
}
