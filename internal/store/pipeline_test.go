// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/raadtech/iptrack/internal/models"
)

// stageName returns the operator of a single-element pipeline stage.
func stageName(t *testing.T, stage bson.D) string {
	t.Helper()
	if len(stage) != 1 {
		t.Fatalf("stage has %d elements, want 1: %v", len(stage), stage)
	}
	return stage[0].Key
}

func stageNames(t *testing.T, p mongo.Pipeline) []string {
	t.Helper()
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stageName(t, stage)
	}
	return names
}

func assertStages(t *testing.T, p mongo.Pipeline, want []string) {
	t.Helper()
	got := stageNames(t, p)
	if len(got) != len(want) {
		t.Fatalf("pipeline stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestListPipelineStages(t *testing.T) {
	tests := []struct {
		name       string
		recordType models.RecordType
		skip       int64
		limit      int64
		want       []string
	}{
		{
			name:       "unfiltered page",
			recordType: "",
			skip:       0,
			limit:      10,
			want:       []string{"$lookup", "$unwind", "$addFields", "$project", "$sort", "$skip", "$limit"},
		},
		{
			name:       "record type filter",
			recordType: models.RecordTypeSearch,
			skip:       20,
			limit:      10,
			want:       []string{"$match", "$lookup", "$unwind", "$addFields", "$project", "$sort", "$skip", "$limit"},
		},
		{
			name:       "all sentinel means no filter",
			recordType: models.RecordTypeAll,
			skip:       0,
			limit:      10,
			want:       []string{"$lookup", "$unwind", "$addFields", "$project", "$sort", "$skip", "$limit"},
		},
		{
			name:       "export variant has no paging",
			recordType: "",
			skip:       0,
			limit:      -1,
			want:       []string{"$lookup", "$unwind", "$addFields", "$project", "$sort"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStages(t, listPipeline(tt.recordType, tt.skip, tt.limit), tt.want)
		})
	}
}

func TestListPipelinePaging(t *testing.T) {
	p := listPipeline(models.RecordTypeClick, 30, 15)

	skipStage := p[len(p)-2]
	if got := skipStage[0].Value.(int64); got != 30 {
		t.Errorf("$skip = %d, want 30", got)
	}
	limitStage := p[len(p)-1]
	if got := limitStage[0].Value.(int64); got != 15 {
		t.Errorf("$limit = %d, want 15", got)
	}
}

func TestListPipelineLeftJoin(t *testing.T) {
	p := listPipeline("", 0, 10)

	unwind := p[1][0].Value.(bson.D)
	var preserve *bool
	for _, e := range unwind {
		if e.Key == "preserveNullAndEmptyArrays" {
			v := e.Value.(bool)
			preserve = &v
		}
	}
	if preserve == nil || !*preserve {
		t.Errorf("list $unwind must preserve unmatched records, got %v", unwind)
	}
}

func TestShiftPipelineInnerJoin(t *testing.T) {
	p := shiftPipeline(models.ShiftEvening, "", 0, 10)

	assertStages(t, p, []string{"$lookup", "$unwind", "$match", "$addFields", "$project", "$sort", "$skip", "$limit"})

	unwind := p[1][0].Value.(bson.D)
	for _, e := range unwind {
		if e.Key == "preserveNullAndEmptyArrays" {
			if e.Value.(bool) {
				t.Error("shift $unwind must drop unmatched records")
			}
		}
	}

	match := p[2][0].Value.(bson.D)
	if match[0].Key != "userInfo.shift" || match[0].Value.(int) != 2 {
		t.Errorf("shift $match = %v, want userInfo.shift=2", match)
	}
}

func TestShiftPipelineRecordTypeFilter(t *testing.T) {
	p := shiftPipeline(models.ShiftNight, models.RecordTypeSession, 0, 10)

	match := p[2][0].Value.(bson.D)
	if len(match) != 2 {
		t.Fatalf("shift $match has %d conditions, want 2: %v", len(match), match)
	}
	if match[1].Key != "record_type" || match[1].Value != models.RecordTypeSession {
		t.Errorf("shift $match record_type = %v", match[1])
	}
}

func TestCountPipelines(t *testing.T) {
	assertStages(t, listCountPipeline(""), []string{"$count"})
	assertStages(t, listCountPipeline(models.RecordTypeSearch), []string{"$match", "$count"})
	assertStages(t, shiftCountPipeline(models.ShiftMorning, ""),
		[]string{"$lookup", "$unwind", "$match", "$addFields", "$project", "$count"})
}

func TestShiftSwitchDefaultsToUnknown(t *testing.T) {
	labels := map[models.Shift]string{
		models.ShiftMorning: "Morning",
		models.ShiftEvening: "Evening",
		models.ShiftNight:   "Night",
	}

	sw := shiftSwitch(labels)
	inner := sw[0].Value.(bson.D)

	var gotDefault string
	var branchCount int
	for _, e := range inner {
		switch e.Key {
		case "default":
			gotDefault = e.Value.(string)
		case "branches":
			branchCount = len(e.Value.(bson.A))
		}
	}
	if gotDefault != "Unknown" {
		t.Errorf("$switch default = %q, want Unknown", gotDefault)
	}
	if branchCount != 3 {
		t.Errorf("$switch branches = %d, want 3", branchCount)
	}
}

func TestGroupTopPipeline(t *testing.T) {
	p := groupTopPipeline("country_name", 10)

	assertStages(t, p, []string{"$group", "$sort", "$limit"})

	group := p[0][0].Value.(bson.D)
	if group[0].Key != "_id" || group[0].Value != "$country_name" {
		t.Errorf("$group _id = %v, want $country_name", group[0])
	}

	sort := p[1][0].Value.(bson.D)
	if sort[0].Key != "count" || sort[0].Value.(int) != -1 {
		t.Errorf("$sort = %v, want count descending", sort)
	}

	if limit := p[2][0].Value.(int); limit != 10 {
		t.Errorf("$limit = %d, want 10", limit)
	}
}
