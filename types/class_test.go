package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassDescriptor_Ancestors(t *testing.T) {
	root := &ClassDescriptor{Name: "root"}
	mid := &ClassDescriptor{Name: "mid", Parent: root}
	leaf := &ClassDescriptor{Name: "leaf", Parent: mid}

	chain := leaf.Ancestors()
	assert.Equal(t, []*ClassDescriptor{leaf, mid, root}, chain)
	assert.Equal(t, []*ClassDescriptor{root}, root.Ancestors())
}

func TestGetTestDisplayName(t *testing.T) {
	assert.Equal(t, "TestFoo", GetTestDisplayName("TestFoo", "./pkg/foo"))
	assert.Equal(t, "foo (class)", GetTestDisplayName("", "./pkg/foo"))
	assert.Equal(t, "foo (class)", GetTestDisplayName("", "./pkg/foo/"))
}
