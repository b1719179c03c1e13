package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	actSchema := compile("act.schema.json")
	deliverSchema := compile("deliver.schema.json")
	eventSchema := compile("event.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"ash",
	  "capabilities":{"max_queue":64},
	  "auth":{"token":"provider-secret"}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"S1",
	  "player_id":"P1",
	  "role":"player",
	  "game_params":{
	    "tiers":[
	      {"tier":"basic","price":100,"catch_rate":2},
	      {"tier":"master","price":4990,"catch_rate":99}
	    ],
	    "max_active":20,
	    "field_bound":999,
	    "currency":"GRID",
	    "paused":false
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "instants":[
	    {"id":"I1","type":"PURCHASE_ORBS","tier":"basic","qty":5},
	    {"id":"I2","type":"THROW_ORB","tier":"basic","slot":3},
	    {"id":"I3","type":"FORCE_SPAWN","slot":0,"x":120,"y":480},
	    {"id":"I4","type":"SET_PAUSED","paused":true}
	  ]
	}`), &act)
	validate(actSchema, act)

	var deliver any
	_ = json.Unmarshal([]byte(`{
	  "type":"DELIVER",
	  "protocol_version":"1.0",
	  "request_id":7,
	  "randomness":"`+make128hex()+`"
	}`), &deliver)
	validate(deliverSchema, deliver)

	var event any
	_ = json.Unmarshal([]byte(`{
	  "type":"EVENT",
	  "protocol_version":"1.0",
	  "event":{"type":"CRITTER_CAUGHT","seq":12,"slot":3,"player":"P1","critter_id":9,"prize":"prize-1"}
	}`), &event)
	validate(eventSchema, event)
}

func make128hex() string {
	b := make([]byte, 128)
	for i := range b {
		b[i] = "0123456789abcdef"[i%16]
	}
	return string(b)
}
