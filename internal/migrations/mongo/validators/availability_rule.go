package validators

import "go.mongodb.org/mongo-driver/bson"

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

const clockPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`

var AvailabilityRuleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"day_of_week",
			"start_time",
			"end_time",
			"is_available",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"day_of_week": bson.M{
				"bsonType": "string",
				"enum":     weekdays,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"slot_duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  5,
				"maximum":  480,
			},

			"is_available": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
