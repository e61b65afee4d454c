package validators

import "go.mongodb.org/mongo-driver/bson"

const datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`

var BlockedDateValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"date", "created_by", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_by": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
