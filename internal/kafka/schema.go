package kafka

// MessageSchema represents an Avro serialized Message.
const MessageSchema = `
{
	"type": "record",
	"name": "Message",
	"fields": [
		{"name": "delivery", "type": "string"},
		{"name": "address", "type": "string"},
		{"name": "content", "type": "string"},
		{"name": "purpose", "type": "string"},
		{"name": "delivery_attempts", "type": "int"},
		{"name": "expires_at", "type": {"type": "long", "logicalType": "timestamp-micros"}}
	]
}
`
