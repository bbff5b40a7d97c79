package telemetry

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ccollicutt/logaroo/pkg/record"
)

// Envelope names and base types understood by the collector.
const (
	MessageName   = "Microsoft.ApplicationInsights.Message"
	ExceptionName = "Microsoft.ApplicationInsights.Exception"
	EventName     = "Microsoft.ApplicationInsights.Event"

	messageBaseType   = "MessageData"
	exceptionBaseType = "ExceptionData"
	eventBaseType     = "EventData"
)

// Envelope is one telemetry item in the collector's wire format.
type Envelope struct {
	Name string            `json:"name"`
	Time time.Time         `json:"time"`
	IKey string            `json:"iKey"`
	Tags map[string]string `json:"tags,omitempty"`
	Data Data              `json:"data"`
}

// Data wraps the typed payload.
type Data struct {
	BaseType string      `json:"baseType"`
	BaseData interface{} `json:"baseData"`
}

// MessageData is a trace payload.
type MessageData struct {
	Ver           int               `json:"ver"`
	Message       string            `json:"message"`
	SeverityLevel int               `json:"severityLevel"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// ExceptionData is an exception payload.
type ExceptionData struct {
	Ver        int                `json:"ver"`
	Exceptions []ExceptionDetails `json:"exceptions"`
	Properties map[string]string  `json:"properties,omitempty"`
}

// ExceptionDetails describes a single error.
type ExceptionDetails struct {
	TypeName     string `json:"typeName"`
	Message      string `json:"message"`
	HasFullStack bool   `json:"hasFullStack"`
}

// EventData is a custom event payload.
type EventData struct {
	Ver        int               `json:"ver"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// envelopeFactory stamps envelopes with the key, time and a ULID operation id.
type envelopeFactory struct {
	ikey string
	role string
	now  func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newEnvelopeFactory(ikey string) *envelopeFactory {
	role, _ := os.Hostname()
	return &envelopeFactory{
		ikey:    ikey,
		role:    role,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (f *envelopeFactory) envelope(name, baseType string, payload interface{}) *Envelope {
	now := f.now().UTC()

	f.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), f.entropy)
	f.mu.Unlock()

	tags := map[string]string{"ai.operation.id": id.String()}
	if f.role != "" {
		tags["ai.cloud.roleInstance"] = f.role
	}

	return &Envelope{
		Name: name,
		Time: now,
		IKey: f.ikey,
		Tags: tags,
		Data: Data{BaseType: baseType, BaseData: payload},
	}
}

func (f *envelopeFactory) message(rec *record.Record) *Envelope {
	return f.envelope(MessageName, messageBaseType, &MessageData{
		Ver:           2,
		Message:       rec.Message(),
		SeverityLevel: int(rec.Level),
		Properties: map[string]string{
			TagPath:       rec.Path,
			TagLineNumber: strconv.Itoa(rec.FirstLine),
		},
	})
}

func (f *envelopeFactory) exception(err error, tags map[string]string) *Envelope {
	return f.envelope(ExceptionName, exceptionBaseType, &ExceptionData{
		Ver: 2,
		Exceptions: []ExceptionDetails{{
			TypeName: errorTypeName(err),
			Message:  err.Error(),
		}},
		Properties: copyTags(tags),
	})
}

func (f *envelopeFactory) event(name string, props map[string]string) *Envelope {
	return f.envelope(EventName, eventBaseType, &EventData{
		Ver:        2,
		Name:       name,
		Properties: copyTags(props),
	})
}

func errorTypeName(err error) string {
	return fmt.Sprintf("%T", err)
}

func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
