package validators

import "go.mongodb.org/mongo-driver/bson"

var bookingStatuses = []string{"pending", "confirmed", "in_progress", "completed", "cancelled"}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"full_name",
			"email",
			"phone",
			"contact_method",
			"services_requested",
			"requested_date",
			"requested_time",
			"consent",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"full_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 255,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"minLength": 8,
				"maxLength": 20,
			},

			"contact_method": bson.M{
				"bsonType": "string",
				"enum":     []string{"email", "phone", "text"},
			},

			"services_requested": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"requested_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"requested_time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"consent": bson.M{
				"bsonType": "bool",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     bookingStatuses,
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

// SlotClaimValidator keeps claim ids in the "<date>T<time>" form used by the booking repository.
var SlotClaimValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "booking_id", "date", "time"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9]{4}-[0-9]{2}-[0-9]{2}T([01][0-9]|2[0-3]):[0-5][0-9]$`,
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},
		},
	},
}
