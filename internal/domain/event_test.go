package domain

import "testing"

func TestLoadEventValidate(t *testing.T) {
	valid := RunStarted("ev-1", "run-1", "LOCAL_TO_S3", "started", nil)
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid event: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(e *LoadEvent)
	}{
		{"missing event id", func(e *LoadEvent) { e.EventID = " " }},
		{"missing run id", func(e *LoadEvent) { e.RunID = "" }},
		{"missing component", func(e *LoadEvent) { e.Component = "" }},
		{"bad level", func(e *LoadEvent) { e.Level = "DEBUG" }},
		{"bad type", func(e *LoadEvent) { e.Type = "OTHER" }},
		{"bad entity type", func(e *LoadEvent) { e.EntityType = "TABLE" }},
		{"missing entity id", func(e *LoadEvent) { e.EntityID = "" }},
		{"bad status", func(e *LoadEvent) { e.Status = "DONE" }},
	}
	for _, tc := range cases {
		event := valid
		tc.mutate(&event)
		if err := event.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestEventConstructorsShape(t *testing.T) {
	finished := RunFinished("ev-2", "run-1", "LOCAL_TO_S3", StatusFailure, "done", Metadata{"files_failure": 1})
	if finished.Level != LevelError {
		t.Fatalf("failed finish must be ERROR level")
	}
	if finished.EntityType != EntityRun || finished.EntityID != "run-1" {
		t.Fatalf("run events are keyed by run id")
	}

	success := IngestSucceeded("ev-3", "run-1", "LOCAL_TO_S3", "a.csv|1|2", "uploaded", nil)
	if success.Type != EventIngest || success.Status != StatusSuccess || success.EntityType != EntityFile {
		t.Fatalf("unexpected ingest success shape: %+v", success)
	}

	failure := IngestFailed("ev-4", "run-1", "LOCAL_TO_S3", "a.csv|1|2", "failed", "", "boom", nil)
	if failure.Level != LevelError || failure.ErrorDetails != "boom" {
		t.Fatalf("unexpected ingest failure shape: %+v", failure)
	}

	checkpoint := CheckpointEvent("ev-5", "run-1", "LOCAL_TO_S3", "a.csv|1|2", StatusSuccess, "checks passed", nil)
	if checkpoint.Type != EventPipeline {
		t.Fatalf("checkpoint events use the PIPELINE type")
	}
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	original := Metadata{"k": "v"}
	event := RunStarted("ev-1", "run-1", "c", "m", original)
	original["k"] = "changed"
	if event.Metadata["k"] != "v" {
		t.Fatalf("event metadata must not alias the caller's map")
	}
}

func TestRunSummaryStatus(t *testing.T) {
	if (RunSummary{FilesFound: 3, FilesSuccess: 3}).Status() != StatusSuccess {
		t.Fatalf("expected SUCCESS with zero failures")
	}
	if (RunSummary{FilesFound: 3, FilesSuccess: 2, FilesFailure: 1}).Status() != StatusFailure {
		t.Fatalf("expected FAILURE with one failed file")
	}
	if (RunSummary{FilesFound: 2, FilesSkipped: 2}).Status() != StatusSuccess {
		t.Fatalf("skipped files never fail a run")
	}
}
