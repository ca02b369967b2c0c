package logging

import (
	"time"
)

const componentKey = "component"

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component names the subsystem emitting the line
func Component(name string) Field {
	return String(componentKey, name)
}

func DocumentID(id string) Field {
	return String("document_id", id)
}

// NodeID is a layout node id such as "tag:Draft"
func NodeID(id string) Field {
	return String("node_id", id)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Tick(n uint64) Field {
	return Uint64("tick", n)
}

func Alpha(a float64) Field {
	return Float64("alpha", a)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
