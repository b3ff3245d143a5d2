// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/raadtech/iptrack/internal/models"
)

// Pipeline construction for the IP record listings. Every listing joins
// ip_data.pid to users.pid, derives the shift label and clock range
// inside the pipeline, and sorts by creation time descending.
//
// Join semantics differ by path: the plain listing and the export keep
// records whose PID matches no user (left join, empty user object), while
// the shift-filtered listing drops them, since a record without an owning
// user has no shift to match on.

// shiftSwitch builds a $switch translating the joined user's shift value
// into one of the given strings, defaulting to "Unknown".
func shiftSwitch(byShift map[models.Shift]string) bson.D {
	branches := bson.A{}
	for _, s := range []models.Shift{models.ShiftMorning, models.ShiftEvening, models.ShiftNight} {
		branches = append(branches, bson.D{
			{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$userInfo.shift", int(s)}}}},
			{Key: "then", Value: byShift[s]},
		})
	}
	return bson.D{{Key: "$switch", Value: bson.D{
		{Key: "branches", Value: branches},
		{Key: "default", Value: "Unknown"},
	}}}
}

// userJoinStages joins each record to its owning user and attaches the
// derived user object. preserveUnmatched selects left-join (true) or
// inner-join (false) behavior for records without an owning user.
func userJoinStages(preserveUnmatched bool) []bson.D {
	labels := map[models.Shift]string{}
	times := map[models.Shift]string{}
	for _, s := range []models.Shift{models.ShiftMorning, models.ShiftEvening, models.ShiftNight} {
		labels[s] = s.Label()
		times[s] = s.TimeRange()
	}

	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "pid"},
			{Key: "foreignField", Value: "pid"},
			{Key: "as", Value: "userInfo"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$userInfo"},
			{Key: "preserveNullAndEmptyArrays", Value: preserveUnmatched},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "user", Value: bson.D{
			{Key: "name", Value: "$userInfo.name"},
			{Key: "email", Value: "$userInfo.email"},
			{Key: "shift", Value: "$userInfo.shift"},
			{Key: "shiftLabel", Value: shiftSwitch(labels)},
			{Key: "shiftTime", Value: shiftSwitch(times)},
		}}}}},
		{{Key: "$project", Value: bson.D{{Key: "userInfo", Value: 0}}}},
	}
}

func sortStage() bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}}
}

func recordTypeMatch(recordType models.RecordType) bson.D {
	return bson.D{{Key: "$match", Value: bson.D{{Key: "record_type", Value: recordType}}}}
}

// listPipeline builds the paginated left-join listing. A negative limit
// means no skip/limit stages (the export variant).
func listPipeline(recordType models.RecordType, skip, limit int64) mongo.Pipeline {
	p := mongo.Pipeline{}
	if recordType.IsFilter() {
		p = append(p, recordTypeMatch(recordType))
	}
	p = append(p, userJoinStages(true)...)
	p = append(p, sortStage())
	if limit >= 0 {
		p = append(p,
			bson.D{{Key: "$skip", Value: skip}},
			bson.D{{Key: "$limit", Value: limit}},
		)
	}
	return p
}

// listCountPipeline mirrors listPipeline's match without join, sort or
// paging; paired with $count it yields the total for the page math.
func listCountPipeline(recordType models.RecordType) mongo.Pipeline {
	p := mongo.Pipeline{}
	if recordType.IsFilter() {
		p = append(p, recordTypeMatch(recordType))
	}
	p = append(p, bson.D{{Key: "$count", Value: "total"}})
	return p
}

// shiftPipeline builds the shift-filtered listing. Unmatched records are
// excluded: the filter lives on the joined user document.
func shiftPipeline(shift models.Shift, recordType models.RecordType, skip, limit int64) mongo.Pipeline {
	p := shiftBasePipeline(shift, recordType)
	p = append(p, sortStage())
	if limit >= 0 {
		p = append(p,
			bson.D{{Key: "$skip", Value: skip}},
			bson.D{{Key: "$limit", Value: limit}},
		)
	}
	return p
}

// shiftCountPipeline is the shift listing's total, computed through the
// same join and match stages.
func shiftCountPipeline(shift models.Shift, recordType models.RecordType) mongo.Pipeline {
	p := shiftBasePipeline(shift, recordType)
	p = append(p, bson.D{{Key: "$count", Value: "total"}})
	return p
}

func shiftBasePipeline(shift models.Shift, recordType models.RecordType) mongo.Pipeline {
	match := bson.D{{Key: "userInfo.shift", Value: int(shift)}}
	if recordType.IsFilter() {
		match = append(match, bson.E{Key: "record_type", Value: recordType})
	}

	p := mongo.Pipeline{}
	p = append(p, userJoinStages(false)[:2]...) // $lookup, inner $unwind
	p = append(p, bson.D{{Key: "$match", Value: match}})
	p = append(p, userJoinStages(false)[2:]...) // $addFields, $project
	return p
}

// groupTopPipeline groups records by field and returns the top n values
// by descending count.
func groupTopPipeline(field string, n int) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: n}},
	}
}
