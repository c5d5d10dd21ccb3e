package domain_test

import (
	"testing"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEventKind_IsBefore(t *testing.T) {
	for _, k := range domain.Kinds {
		want := k == domain.EventGetBefore || k == domain.EventSetBefore
		assert.Equal(t, want, k.IsBefore(), string(k))
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		channel  string
		kind     domain.EventKind
		property string
		ok       bool
	}{
		{"get", domain.EventGet, "", true},
		{"get:x", domain.EventGet, "x", true},
		{"get:before", domain.EventGetBefore, "", true},
		{"get:before:x", domain.EventGetBefore, "x", true},
		{"get:after:name", domain.EventGetAfter, "name", true},
		{"set", domain.EventSet, "", true},
		{"set:before:a:b", domain.EventSetBefore, "a:b", true},
		{"set:after", domain.EventSetAfter, "", true},
		{"delete", "", "", false},
		{"getter", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			kind, property, ok := domain.ParseChannel(tt.channel)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.property, property)
		})
	}
}

func TestEventKind_QualifiedRoundTrip(t *testing.T) {
	for _, k := range domain.Kinds {
		kind, property, ok := domain.ParseChannel(k.Qualified("x"))
		assert.True(t, ok)
		assert.Equal(t, k, kind)
		assert.Equal(t, "x", property)
	}
}
