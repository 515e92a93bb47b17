package domain

import "encoding/json"

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReadinessState is either NotReady or Ready. The set of implementations is closed.
type ReadinessState interface {
	isReadinessState()
}

type NotReady struct{}

type Ready struct {
	Playing      bool   `json:"playing"`
	PositionSecs uint64 `json:"position_secs"`
}

func (NotReady) isReadinessState() {}
func (Ready) isReadinessState()    {}

func (NotReady) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": "not_ready",
	})
}

func (r Ready) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":          "ready",
		"playing":       r.Playing,
		"position_secs": r.PositionSecs,
	})
}

// AsReady returns the Ready payload of s, if any.
func AsReady(s ReadinessState) (Ready, bool) {
	switch v := s.(type) {
	case Ready:
		return v, true
	case *Ready:
		if v == nil {
			return Ready{}, false
		}
		return *v, true
	default:
		return Ready{}, false
	}
}
