package helpers_test

import (
	"testing"
	"time"

	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	testCases := []struct {
		Name  string
		Input any
	}{
		{
			Name:  "nil",
			Input: nil,
		},
		{
			Name:  "string",
			Input: "/static/",
		},
		{
			Name:  "duration",
			Input: 10 * time.Second,
		},
		{
			Name:  "int64",
			Input: int64(10 << 20),
		},
		{
			Name:  "map",
			Input: map[string]string{"content-type": "application/json"},
		},
		{
			Name:  "nil_pointer",
			Input: (*string)(nil),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Input == nil {
				assert.Nil(t, helpers.Ptr(tc.Input))
			} else {
				assert.Equal(t, &tc.Input, helpers.Ptr(tc.Input))
			}
		})
	}
}
