package sns

// Message types delivered to HTTP(S) subscribers.
const (
	TypeNotification             = "Notification"
	TypeSubscriptionConfirmation = "SubscriptionConfirmation"
	TypeUnsubscribeConfirmation  = "UnsubscribeConfirmation"
)

// HTTPMessage is the JSON document SNS POSTs to an HTTP(S) subscriber.
type HTTPMessage struct {
	Type             string `json:"Type"`
	MessageID        string `json:"MessageId"`
	Token            string `json:"Token,omitempty"`
	TopicArn         string `json:"TopicArn"`
	Subject          string `json:"Subject,omitempty"`
	Message          string `json:"Message"`
	SubscribeURL     string `json:"SubscribeURL,omitempty"`
	Timestamp        string `json:"Timestamp"`
	SignatureVersion string `json:"SignatureVersion"`
	Signature        string `json:"Signature"`
	SigningCertURL   string `json:"SigningCertURL"`
	UnsubscribeURL   string `json:"UnsubscribeURL,omitempty"`
}

// StringToSign builds the canonical string SNS signs for m.
func (m *HTTPMessage) StringToSign() string {
	type kv struct{ k, v string }
	var fields []kv
	switch m.Type {
	case TypeNotification:
		fields = []kv{{"Message", m.Message}, {"MessageId", m.MessageID}}
		if m.Subject != "" {
			fields = append(fields, kv{"Subject", m.Subject})
		}
		fields = append(fields, kv{"Timestamp", m.Timestamp}, kv{"TopicArn", m.TopicArn}, kv{"Type", m.Type})
	default:
		fields = []kv{
			{"Message", m.Message},
			{"MessageId", m.MessageID},
			{"SubscribeURL", m.SubscribeURL},
			{"Timestamp", m.Timestamp},
			{"Token", m.Token},
			{"TopicArn", m.TopicArn},
			{"Type", m.Type},
		}
	}
	var b []byte
	for _, f := range fields {
		b = append(b, f.k...)
		b = append(b, '\n')
		b = append(b, f.v...)
		b = append(b, '\n')
	}
	return string(b)
}
