package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMethodNameFilter(t *testing.T) {
	tests := []struct {
		pattern string
		method  Method
		want    bool
	}{
		{pattern: "TestFoo", method: Method{Class: "./a", Name: "TestFoo"}, want: true},
		{pattern: "TestFoo", method: Method{Class: "./a", Name: "TestFooBar"}, want: false},
		{pattern: "TestFoo*", method: Method{Class: "./a", Name: "TestFooBar"}, want: true},
		{pattern: "Test?ar", method: Method{Class: "./a", Name: "TestBar"}, want: true},
		{pattern: "TestA, TestB", method: Method{Class: "./a", Name: "TestB"}, want: true},
		{pattern: "store#TestPut", method: Method{Class: "./pkg/store", Name: "TestPut"}, want: true},
		{pattern: "store#TestPut", method: Method{Class: "./pkg/api", Name: "TestPut"}, want: false},
		{pattern: "./pkg/**#TestPut", method: Method{Class: "./pkg/store", Name: "TestPut"}, want: true},
		{pattern: "store#", method: Method{Class: "./pkg/store", Name: "TestAnything"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.method.Name, func(t *testing.T) {
			f, err := NewMethodNameFilter(map[string]string{ParamPattern: tt.pattern})
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Include(tt.method))
		})
	}
}

func TestNewMethodNameFilter_Errors(t *testing.T) {
	for _, pattern := range []string{"", " , ", "Test[", "pkg[#TestFoo"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := NewMethodNameFilter(map[string]string{ParamPattern: pattern})
			assert.Error(t, err)
		})
	}
}
