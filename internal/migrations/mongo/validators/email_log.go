package validators

import "go.mongodb.org/mongo-driver/bson"

var EmailLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking_id", "email_type", "recipient", "status", "sent_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"email_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"booking_confirmation", "admin_notification", "status_update"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"sent", "failed"},
			},

			"sent_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
