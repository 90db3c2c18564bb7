package domain

import (
	"encoding/json"
	"testing"
)

func TestField_UnmarshalThreeStates(t *testing.T) {
	type payload struct {
		Name     Field[string]  `json:"name,omitzero"`
		Capacity Field[int]     `json:"capacity,omitzero"`
		Budget   Field[float64] `json:"budget,omitzero"`
	}

	tests := []struct {
		name string
		raw  string
		want payload
	}{
		{
			name: "absent keys stay unset",
			raw:  `{}`,
			want: payload{},
		},
		{
			name: "present value",
			raw:  `{"name": "Hall A", "capacity": 10}`,
			want: payload{Name: NewField("Hall A"), Capacity: NewField(10)},
		},
		{
			name: "explicit null",
			raw:  `{"name": null}`,
			want: payload{Name: NullField[string]()},
		},
		{
			name: "zero value is still a set value, not an absent key",
			raw:  `{"capacity": 0, "budget": 0}`,
			want: payload{Capacity: NewField(0), Budget: NewField(0.0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestField_MarshalOmitsUnset(t *testing.T) {
	type payload struct {
		Name     Field[string] `json:"name,omitzero"`
		Capacity Field[int]    `json:"capacity,omitzero"`
	}
	raw, err := json.Marshal(payload{Name: NewField("Hall A")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"name":"Hall A"}` {
		t.Fatalf("unset fields must be omitted, got %s", raw)
	}

	raw, err = json.Marshal(payload{Name: NullField[string]()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"name":null}` {
		t.Fatalf("null fields must be emitted as null, got %s", raw)
	}
}

func TestField_Ptr(t *testing.T) {
	if p := (Field[int]{}).Ptr(); p != nil {
		t.Fatalf("unset field must yield nil, got %v", *p)
	}
	if p := NullField[int]().Ptr(); p != nil {
		t.Fatalf("null field must yield nil, got %v", *p)
	}
	if p := NewField(7).Ptr(); p == nil || *p != 7 {
		t.Fatalf("expected pointer to 7, got %v", p)
	}
}
